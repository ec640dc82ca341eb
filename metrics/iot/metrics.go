// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package iot exposes the engine's operational counters and gauges to
// Prometheus, following the teacher's pattern of a single namespaced
// registry wrapper rather than package-level global collectors.
package iot

import "github.com/prometheus/client_golang/prometheus"

const namespace = "iot_engine"

// Metrics bundles the collectors the engine and daemon update as they
// run. Construct one per engine instance and pass it a *prometheus.Registry
// to register against.
type Metrics struct {
	ObjectsPublished  prometheus.Counter
	DatagramsIn       prometheus.Counter
	DatagramsOut      prometheus.Counter
	DatagramsDropped  *prometheus.CounterVec
	PeersKnown        prometheus.Gauge
	SubscribersActive prometheus.Gauge
	SubscriptionsOut  prometheus.Gauge
}

// New constructs a Metrics bundle and registers it against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ObjectsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_published_total",
			Help:      "Total number of data objects published by this service.",
		}),
		DatagramsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Total number of inbound datagrams processed.",
		}),
		DatagramsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_sent_total",
			Help:      "Total number of outbound datagrams sent.",
		}),
		DatagramsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_dropped_total",
			Help:      "Total number of inbound datagrams dropped, by reason.",
		}, []string{"reason"}),
		PeersKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers_known",
			Help:      "Number of peers currently on record.",
		}),
		SubscribersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers_active",
			Help:      "Number of peers currently subscribed to this service's data.",
		}),
		SubscriptionsOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions_outbound",
			Help:      "Number of peers this service is currently subscribed to.",
		}),
	}

	reg.MustRegister(
		m.ObjectsPublished,
		m.DatagramsIn,
		m.DatagramsOut,
		m.DatagramsDropped,
		m.PeersKnown,
		m.SubscribersActive,
		m.SubscriptionsOut,
	)

	return m
}

// Dropped reasons recorded against DatagramsDropped.
const (
	ReasonMalformed    = "malformed"
	ReasonBadSignature = "bad_signature"
	ReasonUnknownPeer  = "unknown_peer"
	ReasonSelf         = "self_addressed"
)
