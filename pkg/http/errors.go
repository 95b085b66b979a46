package http

import (
	"errors"

	dcoerr "github.com/fluxcd/dco/pkg/errors"
)

var ErrorUnauthorized = &dcoerr.Error{
	Type: dcoerr.User,
	Help: `The webhook delivery failed authentication

The X-Hub-Signature header is missing or does not match the payload.
Please make sure the webhook secret configured in GitHub is the one
given to dcod with --webhook-secret-file.
`,
	Err: errors.New("webhook signature does not match"),
}

func MakeAPINotFound(path string) *dcoerr.Error {
	return &dcoerr.Error{
		Type: dcoerr.Missing,
		Help: `The endpoint requested is not served by dcod.

GitHub webhooks should be delivered to

    /webhook

and health checks sent to

    /healthz

The path requested was

    ` + path + `
`,
		Err: errors.New("API endpoint not found"),
	}
}

func MakeBadPayload(err error) *dcoerr.Error {
	return &dcoerr.Error{
		Type: dcoerr.User,
		Help: `The webhook payload could not be understood

Make sure the webhook in GitHub is set to deliver "application/json"
payloads.

The error was

    ` + err.Error() + `
`,
		Err: err,
	}
}
