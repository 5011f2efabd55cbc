package events

import (
	"titledoctor/internal/bus"
	"titledoctor/internal/jobs"
)

// Pipeline topics. Success topics carry the enriched payload for the next
// stage; error topics all carry a JobFailed event for the failure handler.
const (
	TopicSubmit          bus.Topic = "yt.submit"
	TopicChannelResolved bus.Topic = "yt.channel.resolved"
	TopicChannelError    bus.Topic = "yt.channel.error"
	TopicVideosRetrieved bus.Topic = "yt.videos.retrieved"
	TopicVideosError     bus.Topic = "yt.videos.error"
	TopicTitlesReady     bus.Topic = "yt.ai.title.ready"
	TopicTitlesError     bus.Topic = "yt.ai.title.error"
	TopicEmailSent       bus.Topic = "yt.email.sent"
	TopicEmailError      bus.Topic = "yt.email.error"
	TopicErrorNotified   bus.Topic = "yt.error.notified"
)

// JobRef identifies the job a payload belongs to. Every pipeline event embeds
// it so the engine can load the job record before running a stage.
type JobRef struct {
	JobID string `json:"jobId"`
	Email string `json:"email"`
}

// JobScoped is implemented by every event tied to a job record.
type JobScoped interface {
	bus.Event
	Job() JobRef
}

// Job returns the embedded reference.
func (r JobRef) Job() JobRef { return r }

// JobSubmitted starts the pipeline for a channel/email pair.
type JobSubmitted struct {
	JobRef
	Channel string `json:"channel"`
}

func (JobSubmitted) EventTopic() bus.Topic { return TopicSubmit }

// ChannelResolved reports the authoritative channel for a submission.
type ChannelResolved struct {
	JobRef
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

func (ChannelResolved) EventTopic() bus.Topic { return TopicChannelResolved }

// VideosRetrieved carries the channel's most recent uploads.
type VideosRetrieved struct {
	JobRef
	ChannelID   string       `json:"channelId"`
	ChannelName string       `json:"channelName"`
	Videos      []jobs.Video `json:"videos"`
}

func (VideosRetrieved) EventTopic() bus.Topic { return TopicVideosRetrieved }

// TitlesReady carries the improved titles produced by the model.
type TitlesReady struct {
	JobRef
	ChannelName string               `json:"channelName"`
	Titles      []jobs.ImprovedTitle `json:"titles"`
}

func (TitlesReady) EventTopic() bus.Topic { return TopicTitlesReady }

// EmailSent reports successful report delivery.
type EmailSent struct {
	JobRef
	ChannelName string `json:"channelName"`
	DeliveryID  string `json:"deliveryId"`
}

func (EmailSent) EventTopic() bus.Topic { return TopicEmailSent }

// JobFailed is published to a stage's error topic when the stage fails.
// The same payload shape is used on every error topic.
type JobFailed struct {
	JobRef
	Stage   string `json:"stage"`
	Message string `json:"message"`

	topic bus.Topic
}

// NewJobFailed builds a failure event addressed to the given error topic.
func NewJobFailed(topic bus.Topic, ref JobRef, stage, message string) JobFailed {
	return JobFailed{JobRef: ref, Stage: stage, Message: message, topic: topic}
}

func (e JobFailed) EventTopic() bus.Topic { return e.topic }

// ErrorNotified reports that the failure email for a job was sent.
type ErrorNotified struct {
	JobRef
	DeliveryID string `json:"deliveryId"`
}

func (ErrorNotified) EventTopic() bus.Topic { return TopicErrorNotified }
