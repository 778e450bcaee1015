package biometric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	log := "Emp Name,Enroll No,Date,In Time,Out Time\n" +
		"Asha Rao,101,04/03/2024,09:15,17:35\n" +
		"Ravi K,102,2024-03-04,9:02 am,\n" +
		",,,,\n" +
		"Bad Date,103,31/31/2024,09:00,17:00\n" +
		"No Times,104,04/03/2024,-,-\n"

	res, err := NewParser(true).Parse(strings.NewReader(log), "device.csv")
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, Row{Line: 2, Name: "Asha Rao", BiometricID: "101", Date: "2024-03-04", TimeIn: "09:15:00", TimeOut: "17:35:00"}, res.Rows[0])
	assert.Equal(t, Row{Line: 3, Name: "Ravi K", BiometricID: "102", Date: "2024-03-04", TimeIn: "09:02:00"}, res.Rows[1])

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "unrecognised date")
	assert.Equal(t, 6, res.Errors[1].Line)
}

func TestParse_MonthFirst(t *testing.T) {
	log := "id,date,time in,time out\n7,03/04/2024,09:00,17:00\n"

	res, err := NewParser(false).Parse(strings.NewReader(log), "device.csv")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2024-03-04", res.Rows[0].Date)
}

func TestParse_MissingColumns(t *testing.T) {
	_, err := NewParser(true).Parse(strings.NewReader("name,date\nA,2024-01-01\n"), "device.csv")
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "biometric_id")
}

func TestParse_Unsupported(t *testing.T) {
	_, err := NewParser(true).Parse(strings.NewReader("x"), "device.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("device.pdf"))
	assert.True(t, Supported("DEVICE.XLSX"))
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := NewParser(true).Parse(strings.NewReader("id,date,in,out\n"), "device.csv")
	assert.ErrorIs(t, err, ErrEmptyLog)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Biometric ID", "Date", "Time In", "Time Out"}))
	// 45355 is 2024-03-04, 0.375 is 09:00
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Asha Rao", 101, 45355, 0.375, "17:30"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := NewParser(true).Parse(buf, "device.xlsx")
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, Row{Line: 2, Name: "Asha Rao", BiometricID: "101", Date: "2024-03-04", TimeIn: "09:00:00", TimeOut: "17:30:00"}, res.Rows[0])
}

func TestNormalizeClock(t *testing.T) {
	cases := map[string]string{
		"09:00":    "09:00:00",
		"17:35:10": "17:35:10",
		"5:30 PM":  "17:30:00",
		"0.5":      "12:00:00",
		"":         "",
		"00:00":    "",
	}
	for in, want := range cases {
		got, ok := normalizeClock(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := normalizeClock("25:00")
	assert.False(t, ok)
}
