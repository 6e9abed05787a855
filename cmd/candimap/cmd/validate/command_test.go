package validate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/validator"
)

func run(t *testing.T, app appcontext.Interface, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func jsonApp() *appcontext.Mock {
	return &appcontext.Mock{OutputFormatFunc: func() string { return "json" }}
}

func TestValidateArgs(t *testing.T) {
	out, err := run(t, jsonApp(), "", "山田太郎", "事務局", "田中太郎1")
	require.NoError(t, err)

	var verdicts []table.NamedVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdicts))
	require.Len(t, verdicts, 3)
	assert.True(t, verdicts[0].Verdict.Accepted)
	assert.Equal(t, validator.ReasonDenylist, verdicts[1].Verdict.Reason)
	assert.Equal(t, validator.ReasonDigit, verdicts[2].Verdict.Reason)
}

func TestValidateStdin(t *testing.T) {
	out, err := run(t, jsonApp(), "山田太郎\n\n  板津ゆか  \n")
	require.NoError(t, err)

	var verdicts []table.NamedVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdicts))
	require.Len(t, verdicts, 2)
	assert.Equal(t, "板津ゆか", verdicts[1].Name)
}

func TestValidateStrict(t *testing.T) {
	_, err := run(t, jsonApp(), "", "--strict", "山田太郎")
	assert.NoError(t, err)

	_, err = run(t, jsonApp(), "", "--strict", "山田太郎", "事務局")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "1 of 2 names rejected")
}

func TestValidateUsesConfiguredRules(t *testing.T) {
	app := jsonApp()
	app.RulesFunc = func() (*rules.Config, error) { return rules.Parse([]byte("denylist: [山田]\n")) }

	out, err := run(t, app, "", "山田太郎", "事務局")
	require.NoError(t, err)

	var verdicts []table.NamedVerdict
	require.NoError(t, json.Unmarshal([]byte(out), &verdicts))
	assert.False(t, verdicts[0].Verdict.Accepted)
	assert.True(t, verdicts[1].Verdict.Accepted)
}

func TestValidateTable(t *testing.T) {
	app := &appcontext.Mock{}
	out, err := run(t, app, "", "事務局")
	require.NoError(t, err)
	assert.Contains(t, out, "denylist")
	assert.Contains(t, out, "✗")
}
