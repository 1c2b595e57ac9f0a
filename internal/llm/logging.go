package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	llmclient "fleetscan/internal/llmclient"
)

// WithLogging logs request size and outcome of each generation call. Pass nil
// to use the standard logger.
func WithLogging(log *logrus.Logger) Middleware {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(next llmclient.Client) llmclient.Client {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next llmclient.Client
	log  *logrus.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	l.log.WithFields(logrus.Fields{"client": l.next.Name(), "prompt_bytes": len(prompt)}).
		Debug("llm request")
	txt, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		entry := l.log.WithField("client", l.next.Name())
		if llmclient.IsPermanent(err) {
			entry.WithError(err).Error("llm response withheld")
		} else {
			entry.WithError(err).Warn("llm request failed")
		}
	}
	return txt, err
}
