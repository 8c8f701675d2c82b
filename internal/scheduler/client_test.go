package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testConfig struct {
	redisURL string
	queue    string
}

func (c testConfig) GetRedisURL() string       { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool { return false }
func (c testConfig) GetAsynqQueueName() string { return c.queue }
func (c testConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{}); err == nil {
		t.Fatal("expected error for empty redis url")
	}
}

func TestClientEnqueuesLeadSync(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(testConfig{redisURL: "redis://" + srv.Addr(), queue: "leadfire"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := LeadSyncPayload{UserID: uuid.New().String()}
	if err := client.ScheduleLeadSync(context.Background(), payload, time.Now()); err != nil {
		t.Fatalf("ScheduleLeadSync: %v", err)
	}

	var found bool
	for _, key := range srv.Keys() {
		if strings.Contains(key, "leadfire") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected task keys in queue leadfire, got %v", srv.Keys())
	}
}

func TestLeadClassifyTaskRoundTrip(t *testing.T) {
	in := LeadClassifyPayload{UserID: uuid.New().String(), CampaignID: uuid.New().String()}

	task, err := NewLeadClassifyTask(in)
	if err != nil {
		t.Fatalf("NewLeadClassifyTask: %v", err)
	}
	if task.Type() != TaskLeadClassify {
		t.Fatalf("task type = %q, want %q", task.Type(), TaskLeadClassify)
	}

	out, err := ParseLeadClassifyPayload(task)
	if err != nil {
		t.Fatalf("ParseLeadClassifyPayload: %v", err)
	}
	if out != in {
		t.Fatalf("payload round trip = %+v, want %+v", out, in)
	}
}

func TestParseLeadSyncPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskLeadSync, []byte("{not json"))
	if _, err := ParseLeadSyncPayload(task); err == nil {
		t.Fatal("expected parse error")
	}
}
