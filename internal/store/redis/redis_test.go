package redis

import (
	"context"
	"fmt"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vovakirdan/lobbychat/internal/store"
)

func TestMessageStoreAgainstServer(t *testing.T) {
	url := os.Getenv("LOBBYCHAT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LOBBYCHAT_TEST_REDIS_URL not set")
	}
	opt, err := goredis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := goredis.NewClient(opt)
	ctx := context.Background()

	key := "lobbychat:test:" + t.Name()
	t.Cleanup(func() {
		_ = client.Del(ctx, key, key+":seq").Err()
		_ = client.Close()
	})

	s := NewWithClient(client, key, 10)
	for i := range 15 {
		if err := s.SaveMessage(ctx, &store.Message{Sender: "alice", Body: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	msgs, err := s.RecentMessages(ctx, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 10 || msgs[0].Body != "m5" || msgs[9].Body != "m14" {
		t.Fatalf("unexpected history: %d entries", len(msgs))
	}

	last, _ := s.RecentMessages(ctx, 2)
	if len(last) != 2 || last[1].ID != 15 {
		t.Fatalf("unexpected tail: %+v", last)
	}
}
