package events

import (
	"encoding/json"
	"fmt"
)

// Message is one event as delivered to a subscriber.
type Message struct {
	Topic string
	Data  []byte
}

// Decode unmarshals the payload into the event type registered for the
// message's topic.
func (m Message) Decode() (any, error) {
	var v any
	switch m.Topic {
	case TopicTeamCreated:
		v = &TeamCreated{}
	case TopicMemberCreated:
		v = &MemberCreated{}
	case TopicMemberUpdated:
		v = &MemberUpdated{}
	case TopicMemberDeleted:
		v = &MemberDeleted{}
	case TopicMembersBulk:
		v = &MembersBulk{}
	default:
		return nil, fmt.Errorf("unknown topic %q", m.Topic)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m.Topic, err)
	}
	return v, nil
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
