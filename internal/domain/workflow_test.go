package domain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"composify.dev/pkg/composify/internal/adapter"
	adaptermocks "composify.dev/pkg/composify/internal/adapter/mocks"
	"composify.dev/pkg/composify/internal/controller"
	controllermocks "composify.dev/pkg/composify/internal/controller/mocks"
	"composify.dev/pkg/composify/internal/domain"
	m "composify.dev/pkg/composify/internal/model"
)

type workspace struct {
	root   string
	impl   string
	header string
	main   string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()

	root := t.TempDir()
	pkg := filepath.Join(root, "src", "demo")
	ws := workspace{
		root:   root,
		impl:   filepath.Join(pkg, "src", "talker.cpp"),
		header: filepath.Join(pkg, "include", "demo", "talker.hpp"),
		main:   filepath.Join(pkg, "src", "main.cpp"),
	}

	write(t, ws.impl, "namespace demo {\nTalker::Talker() : Node(\"talker\") {}\n}  // namespace demo\n")
	write(t, ws.header, "namespace demo {\nclass Talker : public rclcpp::Node {\npublic:\n  Talker();\n};\n}\n")
	write(t, ws.main, "int main() {\n  rclcpp::spin(std::make_shared<demo::Talker>());\n}\n")

	return ws
}

func (ws workspace) snapshot(t *testing.T) map[string]string {
	t.Helper()

	files := map[string]string{}
	for _, path := range []string{ws.impl, ws.header, ws.main} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		files[path] = string(data)
	}

	return files
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestWorkflow(ui controller.UI, store adapter.ReportStore) domain.Workflow {
	return domain.NewDefaultWorkflow(adapter.NewLocalSourceFSAdapter(), store, ui, domain.DefaultSkipDirs)
}

func statuses(outcomes []m.Outcome) []m.Status {
	out := make([]m.Status, 0, len(outcomes))
	for _, outcome := range outcomes {
		out = append(out, outcome.Status)
	}

	return out
}

func TestWorkflow_Convert_NoCandidates(t *testing.T) {
	// Arrange
	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, "No ROS 2 node constructors found.").Return().Once()

	wf := newTestWorkflow(mockUI, mockReportStore)

	// Act
	err := wf.Convert(context.Background(), domain.ConvertArgs{Root: m.Path(t.TempDir()), Report: "report.yaml"})

	// Assert
	assert.NoError(t, err)
	mockUI.AssertExpectations(t)
	mockReportStore.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Convert_MissingRoot(t *testing.T) {
	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	wf := newTestWorkflow(mockUI, mockReportStore)

	err := wf.Convert(context.Background(), domain.ConvertArgs{Root: m.Path(filepath.Join(t.TempDir(), "missing"))})

	assert.ErrorContains(t, err, "discover candidates")
	mockUI.AssertExpectations(t)
}

func TestWorkflow_Convert_EndToEnd(t *testing.T) {
	// Arrange
	ws := newWorkspace(t)
	candidate := m.NodeCandidate{Class: "Talker", Path: m.Path(ws.impl)}
	reportPath := m.Path(filepath.Join(t.TempDir(), "report.yaml"))

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	var summary []m.Outcome

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, candidate).Return(true, nil).Once()
	mockUI.EXPECT().DisplayOutcome(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().DisplaySummary(mock.Anything, mock.Anything).
		Run(func(_ context.Context, outcomes []m.Outcome) { summary = outcomes }).
		Return(nil).Once()
	mockReportStore.EXPECT().SaveReport(mock.Anything, reportPath, mock.MatchedBy(func(r m.Report) bool {
		return r.Root == m.Path(ws.root) && len(r.Outcomes) == 4 && !r.DryRun
	})).Return(nil).Once()

	wf := newTestWorkflow(mockUI, mockReportStore)

	// Act
	err := wf.Convert(context.Background(), domain.ConvertArgs{Root: m.Path(ws.root), Report: reportPath})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []m.Status{m.Converted, m.Converted, m.Unchanged, m.Converted}, statuses(summary))

	files := ws.snapshot(t)
	assert.Equal(t,
		"namespace demo {\nTalker::Talker(const rclcpp::NodeOptions & options) : Node(\"talker\", options) {}\n"+
			"}  // namespace demo\n\n\n#include \"rclcpp_components/register_node_macro.hpp\"\n"+
			"RCLCPP_COMPONENTS_REGISTER_NODE(demo::Talker)\n",
		files[ws.impl])
	assert.Contains(t, files[ws.header], "  explicit Talker(const rclcpp::NodeOptions & options);\n")
	assert.Contains(t, files[ws.main], "std::make_shared<demo::Talker>(rclcpp::NodeOptions{})")

	mockUI.AssertExpectations(t)
	mockReportStore.AssertExpectations(t)
}

func TestWorkflow_Convert_Idempotent(t *testing.T) {
	ws := newWorkspace(t)

	run := func() []m.Outcome {
		mockUI := new(controllermocks.MockUI)
		mockReportStore := new(adaptermocks.MockReportStore)

		var summary []m.Outcome

		mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
		mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(true, nil)
		mockUI.EXPECT().DisplayOutcome(mock.Anything, mock.Anything).Return()
		mockUI.EXPECT().DisplaySummary(mock.Anything, mock.Anything).
			Run(func(_ context.Context, outcomes []m.Outcome) { summary = outcomes }).
			Return(nil)

		err := newTestWorkflow(mockUI, mockReportStore).Convert(context.Background(), domain.ConvertArgs{Root: m.Path(ws.root)})
		require.NoError(t, err)

		return summary
	}

	run()
	first := ws.snapshot(t)

	second := run()

	assert.Equal(t, first, ws.snapshot(t))
	assert.Equal(t, []m.Status{m.AlreadyConverted, m.AlreadyConverted}, statuses(second))
}

func TestWorkflow_Convert_Declined(t *testing.T) {
	ws := newWorkspace(t)
	before := ws.snapshot(t)
	reportPath := m.Path("report.yaml")

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, "Found 1 ROS 2 node constructors.").Return().Once()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(false, nil).Once()
	mockUI.EXPECT().DisplayMessage(mock.Anything, "No nodes selected for composable conversion.").Return().Once()
	mockReportStore.EXPECT().SaveReport(mock.Anything, reportPath, mock.MatchedBy(func(r m.Report) bool {
		return len(r.Outcomes) == 1 && r.Outcomes[0].Status == m.Skipped
	})).Return(nil).Once()

	err := newTestWorkflow(mockUI, mockReportStore).
		Convert(context.Background(), domain.ConvertArgs{Root: m.Path(ws.root), Report: reportPath})

	require.NoError(t, err)
	assert.Equal(t, before, ws.snapshot(t))
	mockUI.AssertExpectations(t)
	mockReportStore.AssertExpectations(t)
}

func TestWorkflow_Convert_ConfirmError(t *testing.T) {
	ws := newWorkspace(t)
	before := ws.snapshot(t)
	confirmErr := errors.New("terminal closed")

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(false, confirmErr).Once()

	err := newTestWorkflow(mockUI, mockReportStore).Convert(context.Background(), domain.ConvertArgs{Root: m.Path(ws.root)})

	assert.ErrorIs(t, err, confirmErr)
	assert.Equal(t, before, ws.snapshot(t))
}

func TestWorkflow_Convert_ReportError(t *testing.T) {
	ws := newWorkspace(t)
	saveErr := errors.New("disk full")

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(true, nil)
	mockUI.EXPECT().DisplayOutcome(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return(nil)
	mockReportStore.EXPECT().SaveReport(mock.Anything, mock.Anything, mock.Anything).Return(saveErr).Once()

	err := newTestWorkflow(mockUI, mockReportStore).
		Convert(context.Background(), domain.ConvertArgs{Root: m.Path(ws.root), Report: "out.yaml"})

	assert.ErrorIs(t, err, saveErr)
}

func TestWorkflow_Convert_PerFileFailuresAreNotErrors(t *testing.T) {
	root := t.TempDir()
	impl := filepath.Join(root, "pkg", "src", "foo.cpp")
	write(t, impl, "Foo::Foo() : Node(\"foo\") {}\n")

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	var summary []m.Outcome

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(true, nil)
	mockUI.EXPECT().DisplayOutcome(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().DisplaySummary(mock.Anything, mock.Anything).
		Run(func(_ context.Context, outcomes []m.Outcome) { summary = outcomes }).
		Return(nil)

	err := newTestWorkflow(mockUI, mockReportStore).Convert(context.Background(), domain.ConvertArgs{Root: m.Path(root)})

	require.NoError(t, err)
	require.NotEmpty(t, summary)
	assert.Equal(t, m.StepHeader, summary[len(summary)-1].Step)
	assert.Equal(t, m.NotFound, summary[len(summary)-1].Status)

	converted, err := os.ReadFile(impl)
	require.NoError(t, err)
	assert.Contains(t, string(converted), "Foo::Foo(const rclcpp::NodeOptions & options) : Node(\"foo\", options)")
	assert.Contains(t, string(converted), "RCLCPP_COMPONENTS_REGISTER_NODE(Foo)")
}

func TestWorkflow_Convert_Cancelled(t *testing.T) {
	ws := newWorkspace(t)
	before := ws.snapshot(t)

	ctx, cancel := context.WithCancel(context.Background())

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, m.NodeCandidate) (bool, error) {
			cancel()
			return true, nil
		})
	mockUI.EXPECT().DisplaySummary(mock.Anything, mock.Anything).Return(nil).Once()

	err := newTestWorkflow(mockUI, mockReportStore).Convert(ctx, domain.ConvertArgs{Root: m.Path(ws.root)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, ws.snapshot(t))
	mockReportStore.AssertNotCalled(t, "SaveReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Convert_CancelledKeepsCompletedOutcomes(t *testing.T) {
	ws := newWorkspace(t)
	zeta := filepath.Join(filepath.Dir(ws.impl), "zeta.cpp")
	write(t, zeta, "Zeta::Zeta() : Node(\"zeta\") {}\n")
	reportPath := m.Path("report.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	var summary []m.Outcome

	mockUI.EXPECT().DisplayMessage(mock.Anything, mock.Anything).Return()
	mockUI.EXPECT().Confirm(mock.Anything, mock.Anything).Return(true, nil).Twice()
	mockUI.EXPECT().DisplayOutcome(mock.Anything, mock.Anything).
		Run(func(_ context.Context, outcome m.Outcome) {
			if outcome.Step == m.StepHeader {
				cancel()
			}
		}).
		Return()
	mockUI.EXPECT().DisplaySummary(mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), mock.Anything).
		Run(func(_ context.Context, outcomes []m.Outcome) { summary = outcomes }).
		Return(nil).Once()
	mockReportStore.EXPECT().SaveReport(mock.Anything, reportPath, mock.MatchedBy(func(r m.Report) bool {
		return len(r.Outcomes) == 4
	})).Return(nil).Once()

	err := newTestWorkflow(mockUI, mockReportStore).Convert(ctx, domain.ConvertArgs{Root: m.Path(ws.root), Report: reportPath})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []m.Status{m.Converted, m.Converted, m.Unchanged, m.Converted}, statuses(summary))
	for _, outcome := range summary {
		assert.Equal(t, "Talker", outcome.Candidate.Class)
	}

	untouched, readErr := os.ReadFile(zeta)
	require.NoError(t, readErr)
	assert.Equal(t, "Zeta::Zeta() : Node(\"zeta\") {}\n", string(untouched))
	mockUI.AssertExpectations(t)
	mockReportStore.AssertExpectations(t)
}

func TestWorkflow_List(t *testing.T) {
	ws := newWorkspace(t)

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayCandidates(mock.Anything, []controller.CandidateView{{
		Candidate: m.NodeCandidate{Class: "Talker", Path: m.Path(ws.impl)},
		Qualified: "demo::Talker",
	}}).Return(nil).Once()

	err := newTestWorkflow(mockUI, mockReportStore).List(context.Background(), domain.ListArgs{Root: m.Path(ws.root)})

	require.NoError(t, err)
	mockUI.AssertExpectations(t)
}

func TestWorkflow_List_Exclude(t *testing.T) {
	ws := newWorkspace(t)

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockUI.EXPECT().DisplayMessage(mock.Anything, "No ROS 2 node constructors found.").Return().Once()

	err := newTestWorkflow(mockUI, mockReportStore).
		List(context.Background(), domain.ListArgs{Root: m.Path(ws.root), Exclude: []string{"talker"}})

	require.NoError(t, err)
	mockUI.AssertExpectations(t)
}

func TestWorkflow_View(t *testing.T) {
	reportPath := m.Path(filepath.Join(t.TempDir(), "report.yaml"))
	outcomes := []m.Outcome{{
		Step:      m.StepConstructor,
		Candidate: m.NodeCandidate{Class: "Talker", Path: "src/talker.cpp"},
		Path:      "src/talker.cpp",
		Status:    m.Converted,
		Message:   "Updated: Talker in src/talker.cpp",
	}}

	store := adapter.NewReportStore()
	require.NoError(t, store.SaveReport(context.Background(), reportPath, m.Report{Root: "ws", DryRun: true, Outcomes: outcomes}))

	mockUI := new(controllermocks.MockUI)
	mockUI.EXPECT().DisplayMessage(mock.Anything, "Conversion report for ws (dry run)").Return().Once()
	mockUI.EXPECT().DisplaySummary(mock.Anything, outcomes).Return(nil).Once()

	err := newTestWorkflow(mockUI, store).View(context.Background(), domain.ViewArgs{Report: reportPath})

	require.NoError(t, err)
	mockUI.AssertExpectations(t)
}

func TestWorkflow_View_EmptyReport(t *testing.T) {
	reportPath := m.Path("report.yaml")

	mockUI := new(controllermocks.MockUI)
	mockReportStore := new(adaptermocks.MockReportStore)

	mockReportStore.EXPECT().LoadReport(mock.Anything, reportPath).Return(m.Report{Root: "ws"}, nil).Once()
	mockUI.EXPECT().DisplayMessage(mock.Anything, "Conversion report for ws").Return().Once()
	mockUI.EXPECT().DisplayMessage(mock.Anything, "The report holds no outcomes.").Return().Once()

	err := newTestWorkflow(mockUI, mockReportStore).View(context.Background(), domain.ViewArgs{Report: reportPath})

	require.NoError(t, err)
	mockUI.AssertExpectations(t)
	mockUI.AssertNotCalled(t, "DisplaySummary", mock.Anything, mock.Anything)
}

func TestWorkflow_View_MissingReport(t *testing.T) {
	mockUI := new(controllermocks.MockUI)

	err := newTestWorkflow(mockUI, adapter.NewReportStore()).
		View(context.Background(), domain.ViewArgs{Report: m.Path(filepath.Join(t.TempDir(), "missing.yaml"))})

	assert.ErrorContains(t, err, "load report")
	mockUI.AssertNotCalled(t, "DisplayMessage", mock.Anything, mock.Anything)
}
