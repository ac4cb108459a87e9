package mailer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock implementation of Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func factoryFor(s Sender) SenderFactory {
	return func(Credentials) (Sender, error) { return s, nil }
}

var testCreds = Credentials{
	KindleAddress: "x@kindle.com",
	SenderAddress: "a@qq.com",
	SenderSecret:  "secret",
	SMTPHost:      "smtp.qq.com",
	SMTPPort:      587,
}

func writeSized(t *testing.T, name string, size int64) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return p
}

func TestDeliver_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "20240102_150405_三体.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 dummy"), 0o644))

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *Email) bool {
		return e.Subject == "convert" &&
			e.From == "a@qq.com" &&
			len(e.To) == 1 && e.To[0] == "x@kindle.com" &&
			e.Text == "Sending 三体.pdf to Kindle\n\nKindle Transfer App" &&
			len(e.Attachments) == 1 &&
			e.Attachments[0].Filename == "三体.pdf" &&
			e.Attachments[0].ContentType == "application/octet-stream" &&
			string(e.Attachments[0].Content) == "%PDF-1.4 dummy"
	})).Return(nil)

	res := NewDispatcher(factoryFor(sender)).Deliver(context.Background(), testCreds, path)
	require.True(t, res.Success)
	require.Equal(t, ReasonNone, res.Reason)
	sender.AssertExpectations(t)
}

func TestDeliver_SubjectOverride(t *testing.T) {
	t.Parallel()

	path := writeSized(t, "a.txt", 3)
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *Email) bool {
		return e.Subject == "hello"
	})).Return(nil)

	res := NewDispatcher(factoryFor(sender)).Deliver(context.Background(), testCreds, path, WithSubject("hello"))
	require.True(t, res.Success)
}

func TestDeliver_MissingFile(t *testing.T) {
	t.Parallel()

	called := false
	factory := func(Credentials) (Sender, error) {
		called = true
		return nil, errors.New("unreachable")
	}

	res := NewDispatcher(factory).Deliver(context.Background(), testCreds, filepath.Join(t.TempDir(), "gone.pdf"))
	require.False(t, res.Success)
	require.Equal(t, ReasonNotFound, res.Reason)
	require.False(t, called)
}

func TestDeliver_SizeLimit(t *testing.T) {
	t.Parallel()

	t.Run("exactly 50 MiB accepted", func(t *testing.T) {
		t.Parallel()

		path := writeSized(t, "big.pdf", MaxAttachmentSize)
		sender := &MockSender{}
		sender.On("Send", mock.Anything, mock.Anything).Return(nil)

		res := NewDispatcher(factoryFor(sender)).Deliver(context.Background(), testCreds, path)
		require.True(t, res.Success)
	})

	t.Run("one byte over rejected without dialing", func(t *testing.T) {
		t.Parallel()

		path := writeSized(t, "huge.pdf", MaxAttachmentSize+1)
		called := false
		factory := func(Credentials) (Sender, error) {
			called = true
			return &MockSender{}, nil
		}

		res := NewDispatcher(factory).Deliver(context.Background(), testCreds, path)
		require.False(t, res.Success)
		require.Equal(t, ReasonOversized, res.Reason)
		require.ErrorIs(t, res.Err, ErrAttachmentTooLarge)
		require.False(t, called)
	})
}

func TestDeliver_TransportFailuresCollapse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		reason Reason
	}{
		{"auth", errors.Join(ErrAuthFailed, errors.New("535 bad credentials")), ReasonAuth},
		{"transport", errors.Join(ErrTransportFailed, errors.New("connection reset")), ReasonTransport},
		{"unexpected", errors.New("boom"), ReasonUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeSized(t, "a.epub", 10)
			sender := &MockSender{}
			sender.On("Send", mock.Anything, mock.Anything).Return(tt.err)

			res := NewDispatcher(factoryFor(sender)).Deliver(context.Background(), testCreds, path)
			require.False(t, res.Success)
			require.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestDeliver_FactoryError(t *testing.T) {
	t.Parallel()

	path := writeSized(t, "a.epub", 10)
	factory := func(Credentials) (Sender, error) {
		return nil, errors.Join(ErrTransportFailed, errors.New("bad host"))
	}

	res := NewDispatcher(factory).Deliver(context.Background(), testCreds, path)
	require.False(t, res.Success)
	require.Equal(t, ReasonTransport, res.Reason)
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	require.True(t, Credentials{SMTPPort: 465}.ImplicitTLS())
	require.False(t, Credentials{SMTPPort: 587}.ImplicitTLS())
	require.False(t, Credentials{SMTPPort: 25}.ImplicitTLS())
	require.NotContains(t, testCreds.String(), "secret")
}
