// Package metrics exposes Prometheus instrumentation for the messaging core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and gauges tracked by the messaging core.
// All record methods are nil-safe so instrumentation can be omitted in tests.
type Metrics struct {
	messagesSent   prometheus.Counter
	pushesSent     prometheus.Counter
	pushesDropped  prometheus.Counter
	typingEvents   prometheus.Counter
	corruptRecords prometheus.Counter
	onlineUsers    prometheus.Gauge
}

// New registers the messaging metrics on the given registerer and returns them.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmchat_messages_sent_total",
			Help: "Chat messages persisted by the message router.",
		}),
		pushesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmchat_pushes_delivered_total",
			Help: "Realtime events written to recipient connections.",
		}),
		pushesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmchat_pushes_dropped_total",
			Help: "Realtime events dropped because a connection's send queue was full or closed.",
		}),
		typingEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmchat_typing_events_total",
			Help: "Typing and stop-typing signals relayed.",
		}),
		corruptRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crmchat_corrupt_messages_total",
			Help: "Stored messages that failed decryption during a history fetch.",
		}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crmchat_online_users",
			Help: "Users currently registered in the presence registry.",
		}),
	}

	reg.MustRegister(
		m.messagesSent,
		m.pushesSent,
		m.pushesDropped,
		m.typingEvents,
		m.corruptRecords,
		m.onlineUsers,
	)
	return m
}

func (m *Metrics) RecordMessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

func (m *Metrics) RecordPushDelivered() {
	if m == nil {
		return
	}
	m.pushesSent.Inc()
}

func (m *Metrics) RecordPushDropped() {
	if m == nil {
		return
	}
	m.pushesDropped.Inc()
}

func (m *Metrics) RecordTypingEvent() {
	if m == nil {
		return
	}
	m.typingEvents.Inc()
}

func (m *Metrics) RecordCorruptRecord() {
	if m == nil {
		return
	}
	m.corruptRecords.Inc()
}

func (m *Metrics) SetOnlineUsers(n int) {
	if m == nil {
		return
	}
	m.onlineUsers.Set(float64(n))
}
