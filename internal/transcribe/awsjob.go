package transcribe

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

// AWSJobAPI adapts the AWS Transcribe client to the Runner's JobAPI.
type AWSJobAPI struct {
	client *awstranscribe.Client
}

func NewAWSJobAPI(cfg aws.Config) *AWSJobAPI {
	return &AWSJobAPI{client: awstranscribe.NewFromConfig(cfg)}
}

func (a *AWSJobAPI) Start(ctx context.Context, req StartJobRequest) error {
	input := &awstranscribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.Name),
		LanguageCode:         types.LanguageCode(req.LanguageCode),
		Media:                &types.Media{MediaFileUri: aws.String(req.MediaURI)},
		Settings: &types.Settings{
			ShowSpeakerLabels: aws.Bool(req.ShowSpeakerLabels),
		},
	}
	if req.ShowSpeakerLabels && req.MaxSpeakerLabels > 0 {
		input.Settings.MaxSpeakerLabels = aws.Int32(req.MaxSpeakerLabels)
	}

	if _, err := a.client.StartTranscriptionJob(ctx, input); err != nil {
		return fmt.Errorf("aws start transcription job: %w", err)
	}
	return nil
}

func (a *AWSJobAPI) Status(ctx context.Context, name string) (Job, error) {
	out, err := a.client.GetTranscriptionJob(ctx, &awstranscribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(name),
	})
	if err != nil {
		return Job{}, fmt.Errorf("aws get transcription job: %w", err)
	}

	tj := out.TranscriptionJob
	job := Job{
		Name:   name,
		Status: JobStatus(tj.TranscriptionJobStatus),
	}
	if tj.FailureReason != nil {
		job.FailureReason = *tj.FailureReason
	}
	if tj.Transcript != nil && tj.Transcript.TranscriptFileUri != nil {
		job.ResultURI = *tj.Transcript.TranscriptFileUri
	}
	return job, nil
}
