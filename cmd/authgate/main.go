// Command authgate es el gateway de autenticación: servidor HTTP, migraciones
// y herramientas de operador.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
