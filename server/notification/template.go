/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/stagegate/stagegate/api/types"
)

// TemplateData is the context a notification template renders with.
type TemplateData struct {
	Actor         string
	Comment       string
	Kind          types.RequestKind
	RequestID     types.ID
	DocumentID    types.ID
	DocumentTitle string
	Status        types.RequestStatus
}

// Action returns the verb describing the kind of the request.
func (d TemplateData) Action() string {
	if d.Kind == types.DeletionRequest {
		return "deletion"
	}
	return "publication"
}

type message struct {
	subject *template.Template
	body    *template.Template
}

var messages = map[Channel]message{
	AwaitingApproval: newMessage(
		`"{{.DocumentTitle}}" is awaiting approval`,
		`{{.Actor}} requested the {{.Action}} of "{{.DocumentTitle}}".
{{- if .Comment}}

Comment: {{.Comment}}{{end}}`,
	),
	Approved: newMessage(
		`Your {{.Action}} request for "{{.DocumentTitle}}" was approved`,
		`{{.Actor}} approved your request. Status: {{.Status.Description}}.
{{- if .Comment}}

Comment: {{.Comment}}{{end}}`,
	),
	Denied: newMessage(
		`Your {{.Action}} request for "{{.DocumentTitle}}" needs attention`,
		`{{.Actor}} changed your request to {{.Status.Description}}.
{{- if .Comment}}

Comment: {{.Comment}}{{end}}`,
	),
	Published: newMessage(
		`"{{.DocumentTitle}}" is now live`,
		`The {{.Action}} of "{{.DocumentTitle}}" ({{.DocumentID}}) has been applied.`,
	),
}

func newMessage(subject, body string) message {
	return message{
		subject: template.Must(template.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

// Render renders the subject and body of the channel.
func Render(channel Channel, data TemplateData) (string, string, error) {
	msg, ok := messages[channel]
	if !ok {
		return "", "", fmt.Errorf("render %s: unknown channel", channel)
	}

	var subject, body bytes.Buffer
	if err := msg.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", channel, err)
	}
	if err := msg.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", channel, err)
	}

	return subject.String(), body.String(), nil
}
