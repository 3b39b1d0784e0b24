package server

import (
	"context"

	"chat-inbox-server/internal/inbox"
	"github.com/valyala/fastjson"
)

type handler struct {
	inbox       *inbox.Service
	messagePool fastjson.ParserPool
}

// listInbox handles GET /chat/v1/inbox/{user}
func (h *handler) listInbox(ctx context.Context, req *Request) (interface{}, error) {
	messages, err := h.inbox.ListInbox(ctx, req.Params.Get(inboxParam))
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// createMessage handles POST /chat/v1/inbox/{ignored}
func (h *handler) createMessage(ctx context.Context, req *Request) (interface{}, error) {
	parser := h.messagePool.Get()
	defer h.messagePool.Put(parser)

	v, err := parser.ParseBytes(req.Body)
	if err != nil {
		return nil, inbox.InvalidPayload("Malformed JSON")
	}
	if v.Type() != fastjson.TypeObject {
		return nil, inbox.InvalidPayload("Request body must be a JSON object")
	}

	var msg inbox.NewMessage
	if msg.FromUser, err = stringField(v, "fromUser"); err != nil {
		return nil, err
	}
	if msg.ToUser, err = stringField(v, "toUser"); err != nil {
		return nil, err
	}
	if msg.MessageBody, err = stringField(v, "messageBody"); err != nil {
		return nil, err
	}

	// timestamp is optional, null counts as absent
	if ts := v.Get("timestamp"); ts != nil && ts.Type() != fastjson.TypeNull {
		raw, err := ts.StringBytes()
		if err != nil {
			return nil, inbox.InvalidField("timestamp", "must be a string")
		}
		if msg.Timestamp, err = inbox.ParseTimestamp(string(raw)); err != nil {
			return nil, inbox.InvalidField("timestamp", "must be RFC 3339 or \"YYYY-MM-DD HH:MM:SS[.ffffff]\"")
		}
	}

	ack, err := h.inbox.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	return ack, nil
}

// deleteMessage handles DELETE /chat/v1/inbox/{id}
func (h *handler) deleteMessage(ctx context.Context, req *Request) (interface{}, error) {
	ok, err := h.inbox.DeleteMessage(ctx, req.Params.Get(inboxParam))
	if err != nil {
		return nil, err
	}
	return ok, nil
}

// stringField extracts a required string field, emptiness is left to inbox validation
func stringField(v *fastjson.Value, name string) (string, error) {
	if !v.Exists(name) {
		return "", inbox.MissingField(name)
	}

	b, err := v.Get(name).StringBytes()
	if err != nil {
		return "", inbox.InvalidField(name, "must be a string")
	}

	return string(b), nil
}
