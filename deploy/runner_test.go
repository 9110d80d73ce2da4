package deploy

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/perlin-network/votedeploy/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Template(ctx context.Context, name string) (Factory, error) {
	args := m.Called(ctx, name)
	f, _ := args.Get(0).(Factory)
	return f, args.Error(1)
}

type mockFactory struct {
	mock.Mock
}

func (m *mockFactory) Deploy(ctx context.Context, candidates []string) (Deployment, error) {
	args := m.Called(ctx, candidates)
	d, _ := args.Get(0).(Deployment)
	return d, args.Error(1)
}

type mockDeployment struct {
	mock.Mock
}

func (m *mockDeployment) Address() string { return "0x5FbDB2315678afecb367f032d93F642f64180aa3" }
func (m *mockDeployment) TxHash() string  { return "0x01" }

func (m *mockDeployment) Wait(ctx context.Context) (*Receipt, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*Receipt)
	return r, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, result *Result) error {
	return m.Called(ctx, result).Error(0)
}

var receipt = &Receipt{
	Address:     "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	TxHash:      "0x01",
	BlockNumber: 1,
	GasUsed:     21000,
}

func newMocks() (*mockProvider, *mockFactory, *mockDeployment) {
	return new(mockProvider), new(mockFactory), new(mockDeployment)
}

func TestRunSuccess(t *testing.T) {
	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, []string{"Alice", "Bob", "Charlie"}).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(receipt, nil)

	r := NewRunner(provider)
	assert.Equal(t, StateNotStarted, r.State())

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, r.State())
	assert.Equal(t, "VotingSystem", result.Template)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, result.Candidates)
	assert.Equal(t, *receipt, result.Receipt)

	provider.AssertExpectations(t)
	factory.AssertExpectations(t)
	deployment.AssertExpectations(t)
}

func TestRunPassesCandidatesInOrder(t *testing.T) {
	provider, factory, deployment := newMocks()

	names := []string{"Charlie", "Alice", "Bob"}

	provider.On("Template", mock.Anything, "Ballot").Return(factory, nil)
	factory.On("Deploy", mock.Anything, []string{"Charlie", "Alice", "Bob"}).Return(deployment, nil).Run(func(args mock.Arguments) {
		// The factory must not be able to alter the runner's list.
		args.Get(1).([]string)[0] = "Mallory"
	})
	deployment.On("Wait", mock.Anything).Return(receipt, nil)

	r := NewRunner(provider, WithTemplate("Ballot"), WithCandidates(names))
	names[1] = "Eve"

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, result.Candidates)
}

func TestRunLookupFails(t *testing.T) {
	provider, _, _ := newMocks()

	cause := errors.New("no artifact for \"VotingSystem\"")
	provider.On("Template", mock.Anything, "VotingSystem").Return(nil, cause)

	r := NewRunner(provider)
	_, err := r.Run(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrDeploymentSubmission))
	assert.False(t, errors.Is(err, ErrConfirmation))
	assert.Contains(t, err.Error(), cause.Error())
	assert.Equal(t, StateFailed, r.State())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, StageLookup, e.Stage)
	assert.Equal(t, "VotingSystem", e.Template)
}

func TestRunDeployFails(t *testing.T) {
	provider, factory, _ := newMocks()

	cause := errors.New("gas required exceeds allowance")
	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(nil, cause)

	r := NewRunner(provider)
	_, err := r.Run(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrDeploymentSubmission))
	assert.False(t, errors.Is(err, ErrTemplateNotFound))
	assert.Contains(t, err.Error(), cause.Error())
	assert.Equal(t, StateFailed, r.State())
}

func TestRunConfirmationFails(t *testing.T) {
	provider, factory, deployment := newMocks()

	cause := errors.New("transaction reverted")
	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(nil, cause)

	r := NewRunner(provider)
	_, err := r.Run(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrConfirmation))
	assert.False(t, errors.Is(err, ErrConfirmationTimeout))
	assert.Contains(t, err.Error(), cause.Error())
	assert.Equal(t, StateFailed, r.State())
}

func TestRunConfirmationTimeout(t *testing.T) {
	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(nil, errors.New("receipt query aborted")).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	})

	r := NewRunner(provider, WithConfirmTimeout(20*time.Millisecond))
	_, err := r.Run(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrConfirmation))
	assert.True(t, errors.Is(err, ErrConfirmationTimeout))
}

func TestRunCallerDeadlineIsNotTimeout(t *testing.T) {
	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(nil, errors.New("receipt query aborted")).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewRunner(provider, WithConfirmTimeout(time.Minute)).Run(ctx)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrConfirmation))
	assert.False(t, errors.Is(err, ErrConfirmationTimeout))
}

func TestRunLogsEachEventKeyOnce(t *testing.T) {
	var buf bytes.Buffer

	log.SetWriter("runner_test", &buf)
	defer log.SetWriter("runner_test", nil)

	require.NoError(t, log.SetLevel("debug"))
	defer func() {
		_ = log.SetLevel("info")
	}()

	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(receipt, nil)

	_, err := NewRunner(provider).Run(context.Background())
	require.NoError(t, err)

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, strings.Count(line, `"event":`), 1, line)
	}

	assert.Contains(t, out, `"event":"`+log.EventDeploySubmitted+`"`)
	assert.Contains(t, out, `"event":"`+log.EventDeployConfirmed+`"`)
}

func TestRunNilReceipt(t *testing.T) {
	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(nil, nil)

	_, err := NewRunner(provider).Run(context.Background())
	assert.True(t, errors.Is(err, ErrConfirmation))
}

func TestRunOnlyOnce(t *testing.T) {
	provider, factory, deployment := newMocks()

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil).Once()
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil).Once()
	deployment.On("Wait", mock.Anything).Return(receipt, nil).Once()

	r := NewRunner(provider)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.Equal(t, ErrAlreadyRun, err)
	assert.Equal(t, StateConfirmed, r.State())
}

func TestRunRecordsResult(t *testing.T) {
	provider, factory, deployment := newMocks()
	recorder := new(mockRecorder)

	provider.On("Template", mock.Anything, "VotingSystem").Return(factory, nil)
	factory.On("Deploy", mock.Anything, mock.Anything).Return(deployment, nil)
	deployment.On("Wait", mock.Anything).Return(receipt, nil)
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(r *Result) bool {
		return r.Receipt.Address == receipt.Address
	})).Return(errors.New("disk full"))

	result, err := NewRunner(provider, WithRecorder(recorder)).Run(context.Background())

	// A confirmed deployment stays confirmed even if it cannot be recorded.
	require.NoError(t, err)
	assert.Equal(t, receipt.Address, result.Receipt.Address)
	recorder.AssertExpectations(t)
}

func TestRunSkipsRecorderOnFailure(t *testing.T) {
	provider, _, _ := newMocks()
	recorder := new(mockRecorder)

	provider.On("Template", mock.Anything, "VotingSystem").Return(nil, errors.New("missing"))

	_, err := NewRunner(provider, WithRecorder(recorder)).Run(context.Background())
	require.Error(t, err)
	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestStageAndStateStrings(t *testing.T) {
	assert.Equal(t, "lookup", StageLookup.String())
	assert.Equal(t, "submit", StageSubmit.String())
	assert.Equal(t, "confirm", StageConfirm.String())
	assert.Equal(t, "stage(9)", Stage(9).String())

	assert.Equal(t, "deploying", StateDeploying.String())
	assert.Equal(t, "unknown", State(9).String())
}
