package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessage(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path = %v, want /botTOKEN/sendMessage", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "TOKEN", BaseURL: srv.URL})
	id, err := c.SendMessage(context.Background(), "-100", "<b>hi</b>")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if id != 42 {
		t.Errorf("message_id = %d, want 42", id)
	}
	if body["chat_id"] != "-100" || body["parse_mode"] != "HTML" {
		t.Errorf("body = %v", body)
	}
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "TOKEN", BaseURL: srv.URL})
	_, err := c.SendMessage(context.Background(), "-1", "x")
	if err == nil || err.Error() != "telegram sendMessage: chat not found" {
		t.Errorf("SendMessage() error = %v, want chat not found", err)
	}
}

func TestSendPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		if r.FormValue("chat_id") != "-100" {
			t.Errorf("chat_id = %v, want -100", r.FormValue("chat_id"))
		}
		if r.FormValue("caption") != "" {
			t.Errorf("caption = %v, want empty", r.FormValue("caption"))
		}
		f, header, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "PNGDATA" || header.Filename != "a.png" {
			t.Errorf("photo = %q %q", data, header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "TOKEN", BaseURL: srv.URL})
	id, err := c.SendPhoto(context.Background(), "-100", []byte("PNGDATA"), "a.png", "")
	if err != nil {
		t.Fatalf("SendPhoto() error = %v", err)
	}
	if id != 7 {
		t.Errorf("message_id = %d, want 7", id)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.SendMessage(context.Background(), "1", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SendMessage() error = %v, want ErrNotConfigured", err)
	}
	if _, err := c.SendPhoto(context.Background(), "1", nil, "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SendPhoto() error = %v, want ErrNotConfigured", err)
	}
}
