package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestParse_IndexesInputs(t *testing.T) {
	doc := parseHTML(t, `<html><body><form>
		<input name="tab1:0:j_idt51:j_idt55" value="100,5"/>
		<input name="organization.code" value="1234567"/>
		<input name="tab1:0:j_idt51:j_idt55" value="duplicate"/>
		<input value="anonymous"/>
	</form></body></html>`)

	v, ok := doc.Field("tab1:0:j_idt51:j_idt55")
	require.True(t, ok)
	assert.Equal(t, "100,5", v, "first occurrence wins on duplicate names")

	v, ok = doc.Field("organization.code")
	require.True(t, ok)
	assert.Equal(t, "1234567", v)

	_, ok = doc.Field("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"tab1:0:j_idt51:j_idt55", "organization.code"}, doc.InputNames())
}

func TestParse_Selects(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<select name="reportYear">
			<option value="2023">2023</option>
			<option value="2024" selected="selected">2024</option>
		</select>
		<select name="unselected">
			<option value="a">A</option>
			<option value="b">B</option>
		</select>
	</body></html>`)

	selects := doc.Selects()
	require.Len(t, selects, 2)
	assert.Equal(t, Select{Name: "reportYear", Selected: "2024"}, selects[0])
	assert.Empty(t, selects[1].Selected, "untouched dropdown has no selection")
}

func TestParse_TableRows(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<table>
			<tr><th>Kod</th><th>Ad</th></tr>
			<tr><td> 1234567890 </td><td>Test MMC</td></tr>
		</table>
	</body></html>`)

	rows := doc.TableRows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Kod", "Ad"}, rows[0])
	assert.Equal(t, []string{"1234567890", "Test MMC"}, rows[1])
}

func TestParse_BrokenMarkup(t *testing.T) {
	doc := parseHTML(t, `<input name="a" value="1"><table><tr><td>x`)

	v, ok := doc.Field("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParse_Text(t *testing.T) {
	doc := parseHTML(t, `<html><body><h1>1-istehsal</h1><p>Form 03104055</p></body></html>`)
	assert.Contains(t, doc.Text(), "1-istehsal")
	assert.Contains(t, doc.Text(), "03104055")
}
