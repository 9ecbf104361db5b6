package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailalert_mail_send_success_total",
		Help: "Total number of emails sent successfully",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailalert_mail_send_failure_total",
		Help: "Total number of email sends that failed",
	}, []string{"host"})
	AlertsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailalert_alerts_sent_total",
		Help: "Total number of alert emails dispatched by the log handler",
	}, []string{"subject"})
	AlertsSuppressed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailalert_alerts_suppressed_total",
		Help: "Total number of alert emails suppressed by the rate limiter",
	}, []string{"subject"})
	AlertErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailalert_alert_errors_total",
		Help: "Total number of internal errors while handling an alert",
	}, []string{"subject"})
)

func init() {
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(AlertsSent)
	prometheus.MustRegister(AlertsSuppressed)
	prometheus.MustRegister(AlertErrors)
}
