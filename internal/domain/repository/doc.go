// Package repository define los contratos de persistencia del gateway.
//
// El gateway no implementa un storage propio: el perfil vive en una colección
// externa (PostgreSQL en producción, memoria en dev/tests) y se accede sólo por
// id o por igualdad de email.
//
//	┌─────────────────────────────────────────────────────┐
//	│      reconcile / providers / services               │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (ProfileRepository)        │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┼──────────────┐
//	         ▼              ▼              ▼
//	┌─────────────┐  ┌─────────────┐  ┌─────────────┐
//	│ store/pg    │  │ store/cached│  │ store/memory│
//	└─────────────┘  └─────────────┘  └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Emails llegan ya normalizados (types.NormalizeEmail)
//   - Errores de dominio están en errors.go
package repository
