// Package kafka publishes finished check results to a Kafka topic, one
// message per URL keyed by the run ID.
package kafka
