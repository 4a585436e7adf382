package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newRecordingREST(t *testing.T) (*REST, func() []recordedRequest) {
	var mu sync.Mutex
	var reqs []recordedRequest
	r := newTestREST(t, func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{req.Method, req.URL.Path, body})
		mu.Unlock()
		if req.URL.Path == "/interactions/1/tok/callback" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"id":"m"}`)
	})
	return r, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestResponderDeferThenEdit(t *testing.T) {
	rest, recorded := newRecordingREST(t)
	rsp := NewResponder(rest, "app", &Interaction{ID: "1", Token: "tok"})
	ctx := context.Background()

	if rsp.Acknowledged() {
		t.Fatal("fresh responder must not be acknowledged")
	}
	if err := rsp.Defer(ctx, true); err != nil {
		t.Fatalf("defer: %v", err)
	}
	if !rsp.Acknowledged() {
		t.Fatal("defer must acknowledge")
	}
	if err := rsp.EditReply(ctx, EditText("done")); err != nil {
		t.Fatalf("edit: %v", err)
	}

	reqs := recorded()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].body["type"] != float64(ResponseDeferredChannelMessageWithSource) {
		t.Fatalf("unexpected defer type: %v", reqs[0].body)
	}
	data, _ := reqs[0].body["data"].(map[string]any)
	if data["flags"] != float64(MessageFlagEphemeral) {
		t.Fatalf("defer must be ephemeral: %v", reqs[0].body)
	}
	if reqs[1].method != http.MethodPatch || reqs[1].path != "/webhooks/app/tok/messages/@original" {
		t.Fatalf("unexpected edit request: %s %s", reqs[1].method, reqs[1].path)
	}
	if reqs[1].body["content"] != "done" {
		t.Fatalf("unexpected edit body: %v", reqs[1].body)
	}
}

func TestResponderFallsBackToInteractionAppID(t *testing.T) {
	rest, recorded := newRecordingREST(t)
	rsp := NewResponder(rest, "", &Interaction{ID: "1", ApplicationID: "app2", Token: "tok"})

	if err := rsp.FollowUp(context.Background(), &MessageSend{Content: "x"}); err != nil {
		t.Fatalf("follow up: %v", err)
	}
	if reqs := recorded(); reqs[0].path != "/webhooks/app2/tok" {
		t.Fatalf("unexpected follow-up path %s", reqs[0].path)
	}
}

func TestResponderAutocompleteEmpty(t *testing.T) {
	rest, recorded := newRecordingREST(t)
	rsp := NewResponder(rest, "app", &Interaction{ID: "1", Token: "tok"})

	if err := rsp.Autocomplete(context.Background(), nil); err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	body := recorded()[0].body
	if body["type"] != float64(ResponseAutocompleteResult) {
		t.Fatalf("unexpected type: %v", body)
	}
	data, _ := body["data"].(map[string]any)
	choices, ok := data["choices"].([]any)
	if !ok || len(choices) != 0 {
		t.Fatalf("expected empty choices array, got %v", data)
	}
	if rsp.Acknowledged() {
		t.Fatal("autocomplete is not an acknowledgement of a command")
	}
}
