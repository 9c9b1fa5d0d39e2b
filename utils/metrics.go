package utils

import (
	"os"

	"github.com/DataDog/datadog-go/statsd"
	Logger "github.com/Luismorlan/blogmux/utils/log"
)

// statsdClient stays nil when no Datadog agent is configured, every helper
// below is then a no-op.
var statsdClient *statsd.Client

func InitMetrics() {
	host := os.Getenv("DD_AGENT_HOST")
	if host == "" {
		return
	}
	client, err := statsd.New(host+":8125", statsd.WithNamespace("blogmux."))
	if err != nil {
		Logger.Log.Warn("fail to create statsd client, metrics disabled: ", err)
		return
	}
	statsdClient = client
}

// CountError records one request that failed with the given error kind.
func CountError(kind string) {
	if statsdClient == nil {
		return
	}
	statsdClient.Incr("request.error", []string{"kind:" + kind}, 1)
}

// CountEvent records one business event, e.g. "user.registered".
func CountEvent(name string) {
	if statsdClient == nil {
		return
	}
	statsdClient.Incr(name, nil, 1)
}

func CloseMetrics() {
	if statsdClient != nil {
		statsdClient.Close()
	}
}
