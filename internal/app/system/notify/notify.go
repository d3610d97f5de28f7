// Package notify defines the event notifier the registration and replacement
// handlers call after successful store mutations. Downstream real-time
// consumers (team portal live views) subscribe through whatever transport the
// deployment wires in; this package only owns the interface and a logging
// implementation.
//
// Notifications are best effort. Callers invoke them after the store write
// has succeeded and never roll back data when a notification fails; failures
// are logged and dropped.
package notify

import "go.uber.org/zap"

// Notifier receives domain events for downstream real-time consumers.
// Implementations must be safe for concurrent use and must not block for
// longer than a network send.
type Notifier interface {
	RegistrationCreated(studentID, teamID string)
	RegistrationDeleted(registrationID, programID, teamID string)
	StudentCreated(studentID, teamID string)
	StudentUpdated(studentID, teamID string)
	StudentDeleted(studentID, teamID string)
}

// LogNotifier writes every event to the application log. It is the default
// notifier and the fallback when no push transport is configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a notifier that records events via logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) RegistrationCreated(studentID, teamID string) {
	n.log.Info("event: registration created",
		zap.String("student_id", studentID),
		zap.String("team_id", teamID))
}

func (n *LogNotifier) RegistrationDeleted(registrationID, programID, teamID string) {
	n.log.Info("event: registration deleted",
		zap.String("registration_id", registrationID),
		zap.String("program_id", programID),
		zap.String("team_id", teamID))
}

func (n *LogNotifier) StudentCreated(studentID, teamID string) {
	n.log.Info("event: student created",
		zap.String("student_id", studentID),
		zap.String("team_id", teamID))
}

func (n *LogNotifier) StudentUpdated(studentID, teamID string) {
	n.log.Info("event: student updated",
		zap.String("student_id", studentID),
		zap.String("team_id", teamID))
}

func (n *LogNotifier) StudentDeleted(studentID, teamID string) {
	n.log.Info("event: student deleted",
		zap.String("student_id", studentID),
		zap.String("team_id", teamID))
}
