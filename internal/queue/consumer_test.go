package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
    ev := NewEvent(ReservationCreated, time.Date(2025, 1, 14, 18, 0, 0, 0, time.UTC))
    ev.ReservationID = 12
    ev.ShowDate = "2025-01-20"
    ev.Guests = 4
    ev.Status = "confirmed"
    ev.TotalCents = 35800

    line := formatLine(ev)
    assert.Equal(t,
        "[2025-01-14T18:00:00Z] reservation.created | reservation_id=12 | date=2025-01-20 | guests=4 | status=confirmed | total=35800 cents\n",
        line)
    assert.NotEmpty(t, ev.ID)
}

func TestHandleMessageAppends(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "booking.log")

    ev := NewEvent(WaitlistNotified, time.Now())
    ev.WaitlistEntryID = 3
    body, err := json.Marshal(ev)
    require.NoError(t, err)

    require.NoError(t, handleMessage(body, path))
    require.NoError(t, handleMessage(body, path))

    data, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Equal(t, 2, countLines(string(data)))
    assert.Contains(t, string(data), "waitlist_entry_id=3")

    assert.Error(t, handleMessage([]byte("{"), path))
    assert.Error(t, handleMessage([]byte(`{"reservation_id":1}`), path))
}

func countLines(s string) int {
    n := 0
    for _, r := range s {
        if r == '\n' {
            n++
        }
    }
    return n
}
