package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfc18/contactplus/internal/model"
)

func record(displayName string, emails ...string) *model.SourceRecord {
	rec := &model.SourceRecord{
		SourceName:  "test",
		DisplayName: displayName,
	}
	for _, e := range emails {
		rec.Emails = append(rec.Emails, model.Email{Address: e})
	}
	return rec
}

func findInsight(insights []model.QualityInsight, issueType string) *model.QualityInsight {
	for i := range insights {
		if insights[i].IssueType == issueType {
			return &insights[i]
		}
	}
	return nil
}

func TestEmailDerivedName_ExactLocalPart(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("claudia.platzer", "Claudia.Platzer@example.com"))

	ins := findInsight(insights, model.IssueEmailDerivedName)
	require.NotNil(t, ins)
	assert.Equal(t, 0.98, ins.Confidence)
	assert.False(t, ins.AutoApplySafe, "detection never auto-applies on its own")
}

func TestEmailDerivedName_UndottedLocalPart(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("claudiaplatzer", "claudia.platzer@example.com"))

	ins := findInsight(insights, model.IssueEmailDerivedName)
	require.NotNil(t, ins)
	assert.Equal(t, 0.95, ins.Confidence)
}

func TestEmailDerivedName_BareHandle(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("cplatzer85"))

	ins := findInsight(insights, model.IssueEmailDerivedName)
	require.NotNil(t, ins)
	assert.Equal(t, 0.85, ins.Confidence)
}

func TestEmailDerivedName_ProperNameClean(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("Claudia Platzer", "claudia.platzer@example.com"))
	assert.Nil(t, findInsight(insights, model.IssueEmailDerivedName))
}

func TestNonPersonalEmail_RolePrefix(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("Anna Schmidt", "info@firma.at", "anna.schmidt@firma.at"))

	ins := findInsight(insights, model.IssueNonPersonalEmail)
	require.NotNil(t, ins)
	assert.Equal(t, "info@firma.at", ins.CurrentValue)
	assert.Equal(t, 0.95, ins.Confidence)
	assert.True(t, ins.AutoApplySafe, "personal address remains, removal is safe")
}

func TestNonPersonalEmail_LastEmailNeverAutoSafe(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("Anna Schmidt", "office@firma.at"))

	ins := findInsight(insights, model.IssueNonPersonalEmail)
	require.NotNil(t, ins)
	assert.False(t, ins.AutoApplySafe, "the only address on a record is never removable")
}

func TestNonPersonalEmail_PrefixNeedsSeparator(t *testing.T) {
	e := NewEngine()
	// "informatik" starts with "info" but has no separator after the prefix.
	insights := e.Inspect(record("Anna Schmidt", "informatik@uni.at"))
	assert.Nil(t, findInsight(insights, model.IssueNonPersonalEmail))

	insights = e.Inspect(record("Anna Schmidt", "info-desk@uni.at"))
	assert.NotNil(t, findInsight(insights, model.IssueNonPersonalEmail))
}

func TestBusinessName_Marker(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("Bäckerei Müller GmbH"))

	ins := findInsight(insights, model.IssueBusinessName)
	require.NotNil(t, ins)
	assert.Equal(t, 0.7, ins.Confidence)
	assert.False(t, ins.AutoApplySafe, "reclassification is never automatic")
}

func TestBusinessName_PersonalNameClean(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("Georg Müller"))
	assert.Nil(t, findInsight(insights, model.IssueBusinessName))
}

func TestEmbeddedIdentifier_AtSign(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("max@home"))

	ins := findInsight(insights, model.IssueEmbeddedIdentifier)
	require.NotNil(t, ins)
	assert.Equal(t, 0.9, ins.Confidence)
}

func TestEmbeddedIdentifier_DigitRuns(t *testing.T) {
	e := NewEngine()

	insights := e.Inspect(record("Max 1234"))
	ins := findInsight(insights, model.IssueEmbeddedIdentifier)
	require.NotNil(t, ins)
	assert.Equal(t, 0.6, ins.Confidence)

	insights = e.Inspect(record("Kunde 123456789"))
	ins = findInsight(insights, model.IssueEmbeddedIdentifier)
	require.NotNil(t, ins)
	assert.Equal(t, 0.8, ins.Confidence, "longer runs score higher")
}

func TestEmbeddedIdentifier_ShortDigitsClean(t *testing.T) {
	e := NewEngine()
	// Three digits is below the run threshold.
	insights := e.Inspect(record("Area 51 Max"))
	assert.Nil(t, findInsight(insights, model.IssueEmbeddedIdentifier))
}

func TestInspect_MultipleRulesFire(t *testing.T) {
	e := NewEngine()
	insights := e.Inspect(record("support4711", "support@firma.at"))

	assert.NotNil(t, findInsight(insights, model.IssueEmailDerivedName))
	assert.NotNil(t, findInsight(insights, model.IssueNonPersonalEmail))
	assert.NotNil(t, findInsight(insights, model.IssueEmbeddedIdentifier))
}

func TestInspect_NeverMutates(t *testing.T) {
	e := NewEngine()
	rec := record("claudia.platzer", "claudia.platzer@example.com")
	_ = e.Inspect(rec)
	assert.Empty(t, rec.Insights, "Inspect only returns findings")
	assert.Equal(t, "claudia.platzer", rec.DisplayName)
}
