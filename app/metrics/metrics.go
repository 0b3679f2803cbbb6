package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_registrations_total",
		Help: "Registration attempts by outcome",
	}, []string{"status"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"status"})

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_email_verifications_total",
		Help: "Email verification link uses by outcome",
	}, []string{"outcome"})

	PasswordResetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_password_resets_total",
		Help: "Password reset completions by outcome",
	}, []string{"status"})

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_emails_total",
		Help: "Outbound emails by transport and outcome",
	}, []string{"transport", "status"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mood_journal_sessions_established",
		Help: "Sessions established minus sessions destroyed since process start",
	})

	MoodEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_journal_mood_entry_operations_total",
		Help: "Mood entry writes by operation",
	}, []string{"operation"})
)
