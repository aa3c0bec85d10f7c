package realtime

import (
	"encoding/json"
	"strconv"
)

// Message is one push delivery. JSON holds the decoded body when the body is
// valid JSON; otherwise only the raw text is available.
type Message struct {
	Topic string
	Body  []byte
	JSON  any
}

func (m Message) Text() string {
	return string(m.Body)
}

func decodeMessage(topic string, body []byte) Message {
	msg := Message{Topic: topic, Body: append([]byte(nil), body...)}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		msg.JSON = decoded
	}
	return msg
}

func TopicForTicket(id string) string {
	return "/topic/user/" + id
}

func TopicForEntry(id int64) string {
	return TopicForTicket(strconv.FormatInt(id, 10))
}
