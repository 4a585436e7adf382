package discord

import (
	"context"
	"sync"
)

// Responder отвечает на одно взаимодействие и помнит, был ли уже ответ
// (после defer/reply повторный callback Discord отвергнет - нужен follow-up).
type Responder struct {
	rest  *REST
	appID string
	it    *Interaction

	mu       sync.Mutex
	deferred bool
	replied  bool
}

func NewResponder(rest *REST, appID string, it *Interaction) *Responder {
	if appID == "" {
		appID = it.ApplicationID
	}
	return &Responder{rest: rest, appID: appID, it: it}
}

func (r *Responder) Reply(ctx context.Context, msg *MessageSend) error {
	err := r.rest.CreateInteractionResponse(ctx, r.it.ID, r.it.Token, &InteractionResponse{
		Type: ResponseChannelMessageWithSource,
		Data: msg,
	})
	if err == nil {
		r.mu.Lock()
		r.replied = true
		r.mu.Unlock()
	}
	return err
}

func (r *Responder) Defer(ctx context.Context, ephemeral bool) error {
	var data *MessageSend
	if ephemeral {
		data = &MessageSend{Flags: MessageFlagEphemeral}
	}
	resp := &InteractionResponse{Type: ResponseDeferredChannelMessageWithSource}
	if data != nil {
		resp.Data = data
	}
	err := r.rest.CreateInteractionResponse(ctx, r.it.ID, r.it.Token, resp)
	if err == nil {
		r.mu.Lock()
		r.deferred = true
		r.mu.Unlock()
	}
	return err
}

func (r *Responder) EditReply(ctx context.Context, edit *MessageEdit) error {
	_, err := r.rest.EditOriginalInteractionResponse(ctx, r.appID, r.it.Token, edit)
	return err
}

func (r *Responder) FollowUp(ctx context.Context, msg *MessageSend) error {
	_, err := r.rest.CreateFollowupMessage(ctx, r.appID, r.it.Token, msg)
	return err
}

func (r *Responder) Autocomplete(ctx context.Context, choices []CommandChoice) error {
	if choices == nil {
		choices = []CommandChoice{}
	}
	return r.rest.CreateInteractionResponse(ctx, r.it.ID, r.it.Token, &InteractionResponse{
		Type: ResponseAutocompleteResult,
		Data: AutocompleteData{Choices: choices},
	})
}

// Acknowledged - был ли уже reply или defer.
func (r *Responder) Acknowledged() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replied || r.deferred
}
