package leads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/health-checker/backend/pricing"
)

func testLead(price pricing.Price) *Lead {
	return &Lead{
		Name:         "Ada",
		Email:        "ada@example.com",
		URL:          "https://www.example.com",
		Platform:     "WordPress",
		Size:         pricing.SizeLarge,
		MobileScore:  41.6,
		DesktopScore: 77,
		Offer: pricing.ServiceOffer{
			Name:    "Red Zone Rescue: Performance",
			Price:   price,
			Details: []string{"a", "b"},
		},
	}
}

func TestFormsSender(t *testing.T) {
	t.Run("Submits", func(t *testing.T) {
		var form map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST, got %s", r.Method)
			}
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Expected JSON accept header")
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("Failed to parse form: %v", err)
			}
			form = map[string]string{}
			for k := range r.PostForm {
				form[k] = r.PostForm.Get(k)
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		lead := testLead(pricing.CustomQuote())
		if err := NewFormsSender(server.URL, "£", server.Client()).Send(context.Background(), lead); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if lead.Reference == "" {
			t.Error("Expected a reference to be assigned")
		}
		if form["reference"] != lead.Reference {
			t.Errorf("Expected reference %s in form, got %q", lead.Reference, form["reference"])
		}
		if form["price"] != "Custom Quote" {
			t.Errorf("Expected Custom Quote price, got %q", form["price"])
		}
		if form["mobile_score"] != "42" {
			t.Errorf("Expected rounded mobile score 42, got %q", form["mobile_score"])
		}
		if form["email"] != "ada@example.com" {
			t.Errorf("Unexpected email %q", form["email"])
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors": [{"message": "should be an email"}, {"message": "is required"}]}`))
		}))
		defer server.Close()

		err := NewFormsSender(server.URL, "£", server.Client()).Send(context.Background(), testLead(pricing.Amount(150)))
		var formErr *FormError
		if !errors.As(err, &formErr) {
			t.Fatalf("Expected FormError, got %v", err)
		}
		if formErr.Error() != "should be an email, is required" {
			t.Errorf("Unexpected message %q", formErr.Error())
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		err := NewFormsSender("", "£", nil).Send(context.Background(), testLead(pricing.Amount(75)))
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Expected ErrNotConfigured, got %v", err)
		}
	})
}
