package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	updatesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_handled_total",
			Help: "Inbound Telegram updates handled, by kind.",
		},
		[]string{"kind"},
	)

	redeemRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_redeem_requests_total",
			Help: "Accepted redeem submissions relayed to the admin.",
		},
	)

	keysGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_keys_generated_total",
			Help: "Activation keys minted by the admin.",
		},
	)

	keysRedeemed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_keys_redeemed_total",
			Help: "Activation keys successfully redeemed.",
		},
	)

	keysPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_keys_purged_total",
			Help: "Expired activation keys removed by the purge worker.",
		},
	)

	broadcastSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broadcast_sends_total",
			Help: "Broadcast delivery attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_send_failures_total",
			Help: "Fire-and-forget message deliveries that failed.",
		},
	)
)

func IncUpdateHandled(kind string) { updatesHandled.WithLabelValues(kind).Inc() }
func IncRedeemRequest()            { redeemRequests.Inc() }
func IncKeyGenerated()             { keysGenerated.Inc() }
func IncKeyRedeemed()              { keysRedeemed.Inc() }
func AddKeysPurged(n int)          { keysPurged.Add(float64(n)) }
func IncSendFailure()              { sendFailures.Inc() }

func IncBroadcastSend(ok bool) {
	if ok {
		broadcastSends.WithLabelValues("ok").Inc()
	} else {
		broadcastSends.WithLabelValues("failed").Inc()
	}
}
