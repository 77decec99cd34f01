package email

import (
	"bytes"
	htmltpl "html/template"
	texttpl "text/template"
)

type ResetVars struct {
	Email string
	Link  string
	TTL   string
}

var (
	resetHTML = htmltpl.Must(htmltpl.New("reset_html").Parse(`<!doctype html>
<html><body>
<p>Hola {{.Email}},</p>
<p>Recibimos un pedido para restablecer tu contraseña. El link vence en {{.TTL}}.</p>
<p><a href="{{.Link}}">Restablecer contraseña</a></p>
<p>Si no lo pediste, ignorá este correo.</p>
</body></html>`))

	resetText = texttpl.Must(texttpl.New("reset_txt").Parse(`Hola {{.Email}},

Recibimos un pedido para restablecer tu contraseña. El link vence en {{.TTL}}.

{{.Link}}

Si no lo pediste, ignorá este correo.
`))
)

// ResetMessage arma el correo de reset de password.
func ResetMessage(v ResetVars) (Message, error) {
	var h, t bytes.Buffer
	if err := resetHTML.Execute(&h, v); err != nil {
		return Message{}, err
	}
	if err := resetText.Execute(&t, v); err != nil {
		return Message{}, err
	}
	return Message{
		To:      v.Email,
		Subject: "Restablecer contraseña",
		HTML:    h.String(),
		Text:    t.String(),
	}, nil
}
