package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang/glog"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// ErrNoTargetID is returned when announcing without a target id.
var ErrNoTargetID = errors.New("missing target id")

// TargetInfo is announced by a target on its meta topic.
type TargetInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Firmware    string `json:"firmware,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

// Announce publishes info as a retained JSON message on the meta topic.
func Announce(q *Queue, info TargetInfo) error {
	if info.ID == "" {
		return ErrNoTargetID
	}
	meta, err := json.Marshal(&info)
	if err != nil {
		return err
	}
	token := q.PubWith(info.ID+"/"+TopicMeta, meta, 1, true)
	token.Wait()
	return token.Error()
}

// ParseTargetInfo decodes a meta message. The topic decides the id.
func ParseTargetInfo(topic string, payload []byte) (info TargetInfo, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 2 || items[1] != TopicMeta || len(payload) == 0 {
		return
	}
	if err := json.Unmarshal(payload, &info); err != nil {
		glog.Warningf("target %s: bad meta: %v", items[0], err)
		return TargetInfo{}, false
	}
	info.ID = items[0]
	return info, true
}

// Discover collects announced targets until timeout or ctx is done.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) (res []TargetInfo, err error) {
	resCh := make(chan TargetInfo, 1)
	sub := q.Sub("+/"+TopicMeta, func(topic string, payload []byte) {
		info, ok := ParseTargetInfo(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	expired := time.After(timeout)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-expired:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
