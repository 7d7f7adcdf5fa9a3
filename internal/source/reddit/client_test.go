package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListingSkipsRemovedPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/golang/hot.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("raw_json") != "1" {
			t.Error("raw_json=1 should always be requested")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("a User-Agent must be sent")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"aaa","title":"Kept","url":"https://techsite.com/a","score":40,"num_comments":5,"created_utc":1770000000}},
			{"data":{"id":"bbb","title":"Removed by mods","url":"https://techsite.com/b","score":90,"num_comments":9,"created_utc":1770000000,"removed_by_category":"moderator"}}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-agent")
	got, err := c.Listing(context.Background(), "golang", "hot", 25)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate after removed-post filtering, got %d", len(got))
	}
	if got[0].ID != "rd-aaa" {
		t.Errorf("removed post should be skipped, got %s", got[0].ID)
	}
}
