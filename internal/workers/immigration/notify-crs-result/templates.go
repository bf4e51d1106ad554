// internal/workers/immigration/notify-crs-result/templates.go
package notifycrsresult

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"immigration-workers/internal/crs"
)

type messageTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
	sms     *texttemplate.Template
}

type message struct {
	Subject string
	Text    string
	HTML    string
	SMS     string
}

// templateData is what every verdict template renders from.
type templateData struct {
	Name            string
	Total           int
	Cutoff          int
	PointsToCutoff  int
	AssessmentID    string
	Recommendations []crs.Recommendation
	Programs        []string
}

const (
	maxTemplateRecommendations = 3

	recommendationsText = `{{if .Recommendations}}
Ways to raise your score:
{{range .Recommendations}}- {{.Title}} (+{{.EstimatedPointGain}} points, {{.Priority}} priority)
{{end}}{{end}}`

	recommendationsHTML = `{{if .Recommendations}}<h3>Ways to raise your score</h3><ul>{{range .Recommendations}}<li>{{.Title}}: about {{.EstimatedPointGain}} points ({{.Priority}} priority)</li>{{end}}</ul>{{end}}`

	programsText = `{{if .Programs}}
Programs you may qualify for: {{join .Programs}}
{{end}}`

	programsHTML = `{{if .Programs}}<p>Programs you may qualify for: {{join .Programs}}</p>{{end}}`
)

var funcs = map[string]interface{}{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}

func newMessageTemplate(name, subject, text, html, sms string) messageTemplate {
	return messageTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Funcs(funcs).Parse(text + recommendationsText + programsText)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Funcs(funcs).Parse(html + recommendationsHTML + programsHTML)),
		sms:     texttemplate.Must(texttemplate.New(name + ".sms").Parse(sms)),
	}
}

var templates = map[crs.Verdict]messageTemplate{
	crs.VerdictMeetsCutoff: newMessageTemplate(
		string(crs.VerdictMeetsCutoff),
		`Your CRS score of {{.Total}} meets the latest cutoff`,
		"Hi {{.Name}},\n\nYour Comprehensive Ranking System score is {{.Total}}, which meets the latest Express Entry cutoff of {{.Cutoff}}.\n",
		`<p>Hi {{.Name}},</p><p>Your Comprehensive Ranking System score is <strong>{{.Total}}</strong>, which meets the latest Express Entry cutoff of {{.Cutoff}}.</p>`,
		`Your CRS score {{.Total}} meets the latest cutoff ({{.Cutoff}}). Check your email for next steps.`,
	),
	crs.VerdictNearMiss: newMessageTemplate(
		string(crs.VerdictNearMiss),
		`Your CRS score of {{.Total}} is {{.PointsToCutoff}} points from the cutoff`,
		"Hi {{.Name}},\n\nYour Comprehensive Ranking System score is {{.Total}}. The latest cutoff was {{.Cutoff}}, so you are {{.PointsToCutoff}} points away.\n",
		`<p>Hi {{.Name}},</p><p>Your Comprehensive Ranking System score is <strong>{{.Total}}</strong>. The latest cutoff was {{.Cutoff}}, so you are {{.PointsToCutoff}} points away.</p>`,
		`Your CRS score is {{.Total}}, {{.PointsToCutoff}} points from the cutoff.`,
	),
	crs.VerdictBelowCutoff: newMessageTemplate(
		string(crs.VerdictBelowCutoff),
		`Your CRS assessment: {{.Total}} points`,
		"Hi {{.Name}},\n\nYour Comprehensive Ranking System score is {{.Total}}, {{.PointsToCutoff}} points below the latest cutoff of {{.Cutoff}}.\n",
		`<p>Hi {{.Name}},</p><p>Your Comprehensive Ranking System score is <strong>{{.Total}}</strong>, {{.PointsToCutoff}} points below the latest cutoff of {{.Cutoff}}.</p>`,
		`Your CRS score is {{.Total}}.`,
	),
}

func newTemplateData(name, assessmentID string, r *crs.Result) templateData {
	if name == "" {
		name = "there"
	}
	recs := r.Recommendations
	if len(recs) > maxTemplateRecommendations {
		recs = recs[:maxTemplateRecommendations]
	}
	var programs []string
	for _, m := range r.ProgramMatches {
		if m.Eligibility == crs.Eligible {
			programs = append(programs, m.Name)
		}
	}
	return templateData{
		Name:            name,
		Total:           r.Breakdown.Total,
		Cutoff:          r.Cutoff,
		PointsToCutoff:  r.PointsToCutoff,
		AssessmentID:    assessmentID,
		Recommendations: recs,
		Programs:        programs,
	}
}

func (t messageTemplate) render(data templateData) (message, error) {
	var msg message
	var b bytes.Buffer

	if err := t.subject.Execute(&b, data); err != nil {
		return msg, err
	}
	msg.Subject = b.String()

	b.Reset()
	if err := t.text.Execute(&b, data); err != nil {
		return msg, err
	}
	msg.Text = b.String()

	b.Reset()
	if err := t.html.Execute(&b, data); err != nil {
		return msg, err
	}
	msg.HTML = b.String()

	b.Reset()
	if err := t.sms.Execute(&b, data); err != nil {
		return msg, err
	}
	msg.SMS = b.String()
	return msg, nil
}
