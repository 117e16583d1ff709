package mailer

import (
	"bytes"
	"html/template"

	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/qr"
)

const qrEmailSubject = "Your event entry code"

var qrEmailTemplate = template.Must(template.New("qr_delivery").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hello {{.Name}},</p>
  <p>Your registration is confirmed. Present the code below at the entrance:</p>
  <p style="text-align: center;">
    <img src="{{.QRImage}}" alt="entry code" width="256" height="256"/>
  </p>
  <p style="text-align: center; font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
  {{if .Dependents}}<p>Registered dependents: {{.Dependents}}</p>{{end}}
  <p>See you there!</p>
  {{if .TrackingURL}}<img src="{{.TrackingURL}}" alt="" width="1" height="1"/>{{end}}
</body>
</html>`))

type templateData struct {
	Name        string
	Code        string
	QRImage     template.URL
	Dependents  int
	TrackingURL template.URL
}

// BuildQRMessage renders the delivery email for one participant, with the
// QR image inlined and an optional 1x1 open-tracking pixel.
func BuildQRMessage(p *model.Participant, trackingURL string) (*Message, error) {
	uri, err := qr.DataURI(p.Code, 256)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	err = qrEmailTemplate.Execute(&body, templateData{
		Name:        p.Name,
		Code:        p.Code,
		QRImage:     template.URL(uri),
		Dependents:  p.DependentsCount,
		TrackingURL: template.URL(trackingURL),
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		To:       p.Email,
		Subject:  qrEmailSubject,
		HTMLBody: body.String(),
	}, nil
}
