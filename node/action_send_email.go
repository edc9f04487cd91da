package node

import (
	"strings"

	"github.com/kdocs/flowd/docs"
	"github.com/kdocs/flowd/util"
)

// sendEmailAction renders to/subject/body templates against the execution
// context and hands the message to the mailer. Template placeholders use
// the {name} form, jsonpath placeholders the {$.path} form.
type sendEmailAction struct {
	baseExecutor
	mailer docs.Mailer
}

var _ Executor = new(sendEmailAction)

func NewSendEmailAction(mailer docs.Mailer) *sendEmailAction {
	return &sendEmailAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"to":      {Type: "string", Required: true},
			"subject": {Type: "string", Required: true},
			"body":    {Type: "string"},
		}),
		mailer: mailer,
	}
}

func (a *sendEmailAction) Execute(bag *ContextBag, config map[string]any) Result {
	to := strings.TrimSpace(cfgString(config, "to", ""))
	subject := cfgString(config, "subject", "")
	if to == "" || subject == "" {
		return Failed("to and subject are required")
	}
	data := bag.Data()
	to = util.ResolveString(data, to)
	subject = util.ResolveString(data, subject)
	body := util.ResolveString(data, cfgString(config, "body", ""))
	if err := a.mailer.Send(to, subject, body); err != nil {
		return Failed(err.Error())
	}
	return Success(map[string]any{
		"to":      to,
		"subject": subject,
	})
}
