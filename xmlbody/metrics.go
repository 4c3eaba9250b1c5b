package xmlbody

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_xml_decode_total",
		Help: "XML request bodies by decoding result (ok, error, skipped).",
	}, []string{"result"})

	renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_xml_render_total",
		Help: "XML responses rendered, by media type and result.",
	}, []string{"media_type", "result"})
)
