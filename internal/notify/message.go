package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/legal_queries/backend/internal/models"
)

const dateLayout = "02/01/2006"

var statusLabels = map[models.QueryStatus]string{
	models.StatusPending:       "Pendiente",
	models.StatusInProcess:     "En Proceso",
	models.StatusCompleted:     "Finalizada",
	models.StatusReclassified:  "Reclasificada",
	models.StatusElevated:      "Elevada COpS",
	models.StatusInfoRequested: "Info. Solicitada",
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(dateLayout) },
	"status": func(s models.QueryStatus) string {
		if label, ok := statusLabels[s]; ok {
			return label
		}
		return string(s)
	},
	"ritms": func(items []Item) string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.RITM)
		}
		return strings.Join(out, ", ")
	},
}

var lawyerTmpl = template.Must(template.New("lawyer").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #1e40af;">Nuevas Consultas Asignadas</h2>
<p>Hola {{.LawyerName}},</p>
<p>Se te han asignado <strong>{{len .Queries}}</strong> nuevas consultas{{if .IsAutomatic}} (automático - consultas urgentes){{end}}:</p>
{{with .Urgent}}<h3 style="color: #dc2626;">⚠️ Consultas Urgentes ({{len .}})</h3>
{{template "table" .}}{{end}}
{{with .Normal}}<h3 style="color: #1e40af;">Consultas Normales ({{len .}})</h3>
{{template "table" .}}{{end}}
<p>Por favor, revisa y gestiona estas consultas en el sistema.</p>
<p style="color: #666; font-size: 12px;">Este es un correo automático, por favor no respondas.</p>
</div>
{{define "table"}}<table style="width: 100%; border-collapse: collapse;">
<thead><tr><th>RITM</th><th>Tipología</th><th>Plazo</th><th>Estado</th></tr></thead>
<tbody>{{range .}}<tr><td>{{.RITM}}</td><td>{{.Typology}}</td><td>{{date .Deadline}}</td><td>{{status .Status}}</td></tr>{{end}}</tbody>
</table>{{end}}`))

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #059669;">✓ Confirmación de Email Enviado</h2>
<p>Se ha enviado correctamente una notificación a:</p>
<ul>
<li><strong>Letrado:</strong> {{.Req.LawyerName}}</li>
<li><strong>Email:</strong> {{.Req.LawyerEmail}}</li>
<li><strong>Consultas:</strong> {{len .Req.Queries}} ({{len .Req.Urgent}} urgentes)</li>
<li><strong>Tipo:</strong> {{if .Req.IsAutomatic}}Envío automático por consultas urgentes{{else}}Envío manual{{end}}</li>
</ul>
{{with .Req.Urgent}}<p style="color: #dc2626;">⚠️ <strong>Urgentes:</strong> {{ritms .}}</p>{{end}}
{{with .Req.Normal}}<p><strong>Normales:</strong> {{ritms .}}</p>{{end}}
<p style="color: #666; font-size: 12px;">Fecha y hora: {{.SentAt.Format "02/01/2006 15:04:05"}}</p>
</div>`))

func Subject(req Request) string {
	subject := fmt.Sprintf("Nuevas Consultas Asignadas (%d)", len(req.Queries))
	if req.IsAutomatic {
		subject = "⚠️ URGENTE - " + subject
	}
	return subject
}

func RenderLawyerEmail(from string, req Request) (Email, error) {
	var buf bytes.Buffer
	if err := lawyerTmpl.Execute(&buf, req); err != nil {
		return Email{}, fmt.Errorf("render lawyer email: %w", err)
	}
	return Email{
		From:    from,
		To:      []string{req.LawyerEmail},
		Subject: Subject(req),
		HTML:    buf.String(),
	}, nil
}

func RenderConfirmation(from string, to string, req Request, sentAt time.Time) (Email, error) {
	var buf bytes.Buffer
	data := struct {
		Req    Request
		SentAt time.Time
	}{req, sentAt}
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return Email{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Email{
		From:    from,
		To:      []string{to},
		Subject: "Confirmación: Email enviado a " + req.LawyerName,
		HTML:    buf.String(),
	}, nil
}
