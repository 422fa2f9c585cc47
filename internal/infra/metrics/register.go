package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var once sync.Once

// MustRegister registers all collectors exactly once.
func MustRegister(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(
			updatesHandled,
			redeemRequests,
			keysGenerated,
			keysRedeemed,
			keysPurged,
			broadcastSends,
			sendFailures,
		)
	})
}
