package notify

import "html/template"

const layout = `{{define "head"}}<html><head><meta charset="utf-8"></head><body style="padding: 40px; font-family: Arial, Helvetica, sans-serif;">{{end}}
{{define "foot"}}<h2 style="text-align: center;">Gracias por contactarte con SIJAC</h2></body></html>{{end}}
{{define "slot"}}<p>Día: {{.Date}}</p>
<p>Inicio: {{.Start}}</p>
<p>Fin: {{.End}}</p>
{{if .Motive}}<p>Motivo de la consulta:</p>
<p style="text-align: center; margin: 20px 40px; font-style: italic;">"{{.Motive}}"</p>{{end}}{{end}}`

const confirmRequestTmpl = `{{define "confirm_request"}}{{template "head"}}
<h2 style="text-align: center;">Hola {{.FullName}}</h2>
<p>Usted ha solicitado un turno.</p>
{{template "slot" .}}
<p style="text-align: center;">Tiene {{.TTLMinutes}} minutos para confirmar la solicitud.</p>
<p style="text-align: center;"><a href="{{.ConfirmURL}}" target="_blank">Confirmar solicitud</a></p>
{{template "foot"}}{{end}}`

const acceptedTmpl = `{{define "accepted"}}{{template "head"}}
<h2 style="text-align: center;">Hola {{.FullName}}</h2>
<p>Su turno ha sido confirmado. Tenga en cuenta los datos de su turno.</p>
{{template "slot" .}}
<p style="text-align: center;">Lo esperamos.</p>
{{template "foot"}}{{end}}`

const rejectedTmpl = `{{define "rejected"}}{{template "head"}}
<h2 style="text-align: center;">Hola {{.FullName}}</h2>
<p>Lamentablemente su turno no pudo ser aceptado por el siguiente motivo:</p>
<p style="text-align: center; font-style: italic;">{{.Reason}}</p>
<p>Puede solicitar un nuevo turno desde nuestra web o acercarse a nuestras oficinas.</p>
{{template "slot" .}}
{{template "foot"}}{{end}}`

const cancelledTmpl = `{{define "cancelled"}}{{template "head"}}
<h2 style="text-align: center;">Hola {{.FullName}}</h2>
<p>Su turno ha sido cancelado.</p>
{{if .Reason}}<p style="text-align: center; font-style: italic;">{{.Reason}}</p>{{end}}
<p>Datos del turno cancelado:</p>
{{template "slot" .}}
{{template "foot"}}{{end}}`

const staffTmpl = `{{define "staff"}}<html><body style="padding: 40px;">
<h2>Tiene un nuevo turno a confirmar</h2>
{{template "slot" .}}
<h2>Datos de contacto</h2>
<p><strong>Nombre: </strong>{{.FullName}}</p>
<p><strong>Teléfono: </strong>{{.Cellphone}}</p>
<p><strong>Email: </strong>{{.Email}}</p>
</body></html>{{end}}`

const contactTmpl = `{{define "contact"}}<html><body style="padding: 40px;">
<h2>Nuevo mensaje desde el formulario de contacto</h2>
<p><strong>Nombre: </strong>{{.Name}}</p>
<p><strong>Email: </strong>{{.Email}}</p>
{{if .Phone}}<p><strong>Teléfono: </strong>{{.Phone}}</p>{{end}}
<h3>Mensaje:</h3>
<p>{{.Message}}</p>
</body></html>{{end}}`

var templates = template.Must(template.New("mail").Parse(
	layout + confirmRequestTmpl + acceptedTmpl + rejectedTmpl + cancelledTmpl + staffTmpl + contactTmpl,
))
