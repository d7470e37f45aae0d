package classifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/justestif/moodtunes/internal/emotion"
)

func TestOllama_Classify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		want         string
		wantErr      bool
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"Joy."}}`,
			want:         "Joy",
		},
		{
			name:         "Extra words",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"  sadness, the person looks down"}}`,
			want:         "sadness",
		},
		{
			name:         "Empty answer",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"   "}}`,
			wantErr:      true,
		},
		{
			name:         "Model error",
			status:       http.StatusOK,
			responseBody: `{"error":"model not found"}`,
			wantErr:      true,
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			wantErr:      true,
		},
	}

	frame := []byte{0xff, 0xd8, 0xff, 0xe0}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			got, err := NewOllama(srv.URL+"/", "llava:13b").Classify(context.Background(), frame)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
			if gotRequest.Model != "llava:13b" {
				t.Errorf("model = %q", gotRequest.Model)
			}
			if len(gotRequest.Messages) != 1 || len(gotRequest.Messages[0].Images) != 1 {
				t.Fatalf("request messages = %+v", gotRequest.Messages)
			}
			if gotRequest.Messages[0].Images[0] != base64.StdEncoding.EncodeToString(frame) {
				t.Error("frame not sent as base64 image")
			}
		})
	}
}

func TestOllama_RawLabelNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"Surprise!"}}`))
	}))
	defer srv.Close()

	raw, err := NewOllama(srv.URL, "").Classify(context.Background(), []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	if got := emotion.Normalize(raw); got != emotion.Excited {
		t.Errorf("Normalize(%q) = %q, want excited", raw, got)
	}
}

func TestOllama_EmptyFrame(t *testing.T) {
	if _, err := NewOllama("", "").Classify(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty frame")
	}
}

func TestOllama_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := NewOllama(srv.URL, "").Classify(ctx, []byte{1}); err == nil {
		t.Fatal("expected error after deadline")
	}
}

func TestRandom(t *testing.T) {
	for i, want := range emotion.All {
		r := Random{Pick: func(int) int { return i }}
		got, err := r.Classify(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want.String() {
			t.Errorf("Classify() = %q, want %q", got, want)
		}
	}

	got, err := Random{}.Classify(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !emotion.Emotion(got).Valid() {
		t.Errorf("Classify() = %q, not a taxonomy member", got)
	}
}

func TestRandom_DelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Random{Delay: time.Second}.Classify(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Classify() error = %v, want deadline exceeded", err)
	}
}
