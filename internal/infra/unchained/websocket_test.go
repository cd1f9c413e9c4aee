package unchained

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockIndexer accepts one websocket connection and hands it to serve.
func mockIndexer(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func readRequest(t *testing.T, conn *websocket.Conn) wsRequest {
	t.Helper()
	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		t.Errorf("read request: %v", err)
	}
	return req
}

func TestWSClient_SubscribeDeliversMessages(t *testing.T) {
	url := mockIndexer(t, func(conn *websocket.Conn) {
		req := readRequest(t, conn)
		if req.Method != "subscribe" || req.Data.Topic != "txs" || req.Data.Addresses[0] != "0xabc" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = conn.WriteJSON(map[string]any{
			"subscriptionId": req.SubscriptionID,
			"data": map[string]any{
				"txid":      "0x01",
				"address":   "0xabc",
				"caip2":     "eip155:1",
				"status":    "confirmed",
				"transfers": []map[string]any{{"caip19": "eip155:1/slip44:60", "type": "receive", "value": "10"}},
			},
		})
		_ = conn.WriteJSON(map[string]any{"subscriptionId": req.SubscriptionID, "type": "error", "message": "rate limited"})
		_ = conn.WriteJSON(map[string]any{"subscriptionId": req.SubscriptionID, "data": "not an object"})
		readRequest(t, conn)
	})

	client := NewWSClient(url)
	defer client.Close()

	messages := make(chan TxMessage, 1)
	errs := make(chan error, 2)
	data := TxsTopicData{Topic: "txs", Addresses: []string{"0xabc"}}
	err := client.SubscribeTxs(context.Background(), "sub-1", data,
		func(m TxMessage) { messages <- m },
		func(err error) { errs <- err },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case m := <-messages:
		if m.TxID != "0x01" || len(m.Transfers) != 1 || m.Transfers[0].AssetID != "eip155:1/slip44:60" {
			t.Errorf("unexpected message: %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if err == nil {
				t.Error("expected non-nil error")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for error")
		}
	}

	if err := client.UnsubscribeTxs("sub-1", data); err != nil {
		t.Errorf("unsubscribe: %v", err)
	}
}

func TestWSClient_LastUnsubscribeClosesConnection(t *testing.T) {
	closed := make(chan struct{})
	url := mockIndexer(t, func(conn *websocket.Conn) {
		readRequest(t, conn)
		readRequest(t, conn)
		req := readRequest(t, conn)
		if req.Method != "unsubscribe" || req.SubscriptionID != "a" {
			t.Errorf("unexpected request: %+v", req)
		}
		req = readRequest(t, conn)
		if req.Method != "unsubscribe" || req.SubscriptionID != "b" {
			t.Errorf("unexpected request: %+v", req)
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			close(closed)
		}
	})

	client := NewWSClient(url)
	noop := func(TxMessage) {}
	data := TxsTopicData{Topic: "txs", Addresses: []string{"cosmos1abc"}}

	for _, id := range []string{"a", "b"} {
		if err := client.SubscribeTxs(context.Background(), id, data, noop, func(error) {}); err != nil {
			t.Fatalf("subscribe %s: %v", id, err)
		}
	}
	if client.Active() != 2 {
		t.Fatalf("expected 2 active subscriptions, got %d", client.Active())
	}

	_ = client.UnsubscribeTxs("a", data)
	_ = client.UnsubscribeTxs("b", data)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected connection to close after the last unsubscribe")
	}
	if client.Active() != 0 {
		t.Errorf("expected no active subscriptions, got %d", client.Active())
	}
}

func TestWSClient_ConnectionLostNotifiesSubscribers(t *testing.T) {
	url := mockIndexer(t, func(conn *websocket.Conn) {
		readRequest(t, conn)
	})

	client := NewWSClient(url)
	errs := make(chan error, 1)
	err := client.SubscribeTxs(context.Background(), "sub", TxsTopicData{Topic: "txs"},
		func(TxMessage) {},
		func(err error) { errs <- err },
	)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case err := <-errs:
		if !errors.Is(err, ErrConnectionClosed) {
			t.Errorf("expected ErrConnectionClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection error")
	}
}

func TestWSClient_DialFailure(t *testing.T) {
	client := NewWSClient("ws://127.0.0.1:1/ws")
	err := client.SubscribeTxs(context.Background(), "sub", TxsTopicData{Topic: "txs"}, func(TxMessage) {}, func(error) {})
	if err == nil {
		t.Fatal("expected dial error")
	}
	if client.Active() != 0 {
		t.Errorf("failed subscribe must not register handlers")
	}
}

func TestWSFrame_Decode(t *testing.T) {
	var frame wsFrame
	raw := `{"subscriptionId":"x","data":{"txid":"0x02","fee":{"caip19":"eip155:1/slip44:60","value":"21"}}}`
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var msg TxMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if msg.Fee == nil || msg.Fee.Value != "21" {
		t.Errorf("unexpected fee: %+v", msg.Fee)
	}
}
