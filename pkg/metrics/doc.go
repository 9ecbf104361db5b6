// Package metrics defines Prometheus metrics for the mailalert library,
// covering SMTP delivery outcomes and alert handler activity.
package metrics
