package broker

// MessageTopicModel is the read projection of a MessageTopic returned by the
// Broker API's get_all_message_topics / get_message_topic. Per spec §4.2,
// the subscriber projection intentionally drops cursor values.
type MessageTopicModel struct {
	Name        string   `json:"name"`
	Index       uint64   `json:"index"`
	Subscribers []string `json:"subscriber"`
}

// TaskTopicModel is the read projection of a TaskTopic.
type TaskTopicModel struct {
	Name        string   `json:"name"`
	Subscribers []string `json:"subscriber"`
}
