package form_test

import (
	"testing"

	"application-service/internal/form"

	"github.com/stretchr/testify/assert"
)

func TestValidNRC(t *testing.T) {
	valid := []string{"123456/78/9", "123456789", " 123456/78/9 "}
	for _, v := range valid {
		assert.True(t, form.ValidNRC(v), "expected %q to be valid", v)
	}

	invalid := []string{
		"",
		"12345/67/8",
		"1234567/89/0",
		"123456/7/89",
		"1234567890",
		"12345678",
		"123456/78/",
		"abcdef/gh/i",
		"123456-78-9",
	}
	for _, v := range invalid {
		assert.False(t, form.ValidNRC(v), "expected %q to be invalid", v)
	}
}

func TestValidCell(t *testing.T) {
	valid := []string{"0971234567", "260971234567", "+260 97 123 4567", "097-123-4567"}
	for _, v := range valid {
		assert.True(t, form.ValidCell(v), "expected %q to be valid", v)
	}

	invalid := []string{
		"",
		"0260971234567", // 13 digits
		"097123456",     // 9 digits
		"1971234567",    // 10 digits, wrong prefix
		"261971234567",  // 12 digits, wrong prefix
	}
	for _, v := range invalid {
		assert.False(t, form.ValidCell(v), "expected %q to be invalid", v)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, form.ValidEmail("joseph.banda@example.com"))
	assert.False(t, form.ValidEmail("not-an-email"))
	assert.False(t, form.ValidEmail("a@b"))
	assert.False(t, form.ValidEmail("a b@example.com"))
}

func TestCheckSubjects(t *testing.T) {
	t.Run("empty list rejected", func(t *testing.T) {
		assert.NotEmpty(t, form.CheckSubjects(nil))
	})

	t.Run("single valid pair accepted", func(t *testing.T) {
		subjects := []form.SubjectGrade{{Subject: "Mathematics", Grade: "2"}}
		assert.Empty(t, form.CheckSubjects(subjects))
	})

	t.Run("grade out of range rejected", func(t *testing.T) {
		for _, g := range []string{"0", "10", "a", ""} {
			subjects := []form.SubjectGrade{{Subject: "English", Grade: g}}
			assert.NotEmpty(t, form.CheckSubjects(subjects), "grade %q", g)
		}
	})

	t.Run("duplicate subject names rejected case-insensitively", func(t *testing.T) {
		subjects := []form.SubjectGrade{
			{Subject: "Biology", Grade: "3"},
			{Subject: "biology", Grade: "4"},
		}
		assert.NotEmpty(t, form.CheckSubjects(subjects))
	})

	t.Run("custom subject alongside catalog subjects", func(t *testing.T) {
		subjects := []form.SubjectGrade{
			{Subject: "Mathematics", Grade: "1"},
			{Subject: "Metal Fabrication Basics", Grade: "5"},
		}
		assert.Empty(t, form.CheckSubjects(subjects))
	})
}

func TestFormatNRC(t *testing.T) {
	assert.Equal(t, "123456/78/9", form.FormatNRC("123456789"))
	assert.Equal(t, "123456/78", form.FormatNRC("12345678"))
	assert.Equal(t, "123456", form.FormatNRC("123456"))
	assert.Equal(t, "123456/78/9", form.FormatNRC("1234567890"))
	assert.Equal(t, "123456/78/9", form.FormatNRC("123456/78/9"))
}

func TestSanitizeApplication(t *testing.T) {
	a := &form.Application{
		Surname:   "  <b>Banda</b> ",
		Firstname: "Joseph",
		NRC:       " 123456/78/9 ",
		Address:   `12 "Main" St`,
	}
	form.SanitizeApplication(a)

	assert.Equal(t, "&lt;b&gt;Banda&lt;/b&gt;", a.Surname)
	// NRC keeps its slashes and is only trimmed.
	assert.Equal(t, "123456/78/9", a.NRC)
	assert.NotContains(t, a.Address, `"`)
}

func TestCheckAttachments(t *testing.T) {
	pdf := form.Attachment{Filename: "receipt.pdf", ContentType: "application/pdf", Size: 1024, Data: []byte("%PDF-1.4")}

	t.Run("allowed type accepted", func(t *testing.T) {
		assert.NoError(t, form.CheckAttachments([]form.Attachment{pdf}, form.MaxTotalBytes))
	})

	t.Run("disallowed type rejected", func(t *testing.T) {
		exe := form.Attachment{Filename: "virus.exe", ContentType: "application/x-msdownload", Size: 10}
		err := form.CheckAttachments([]form.Attachment{exe}, form.MaxTotalBytes)
		assert.ErrorIs(t, err, form.ErrUnsupportedFileType)
	})

	t.Run("missing declared type falls back to sniffing", func(t *testing.T) {
		sniffed := form.Attachment{
			Filename: "receipt",
			Size:     int64(len("%PDF-1.4 content")),
			Data:     []byte("%PDF-1.4 content"),
		}
		assert.NoError(t, form.CheckAttachments([]form.Attachment{sniffed}, form.MaxTotalBytes))
	})

	t.Run("total exactly at ceiling accepted", func(t *testing.T) {
		a := form.Attachment{Filename: "a.pdf", ContentType: "application/pdf", Size: 600}
		b := form.Attachment{Filename: "b.pdf", ContentType: "application/pdf", Size: 424}
		assert.NoError(t, form.CheckAttachments([]form.Attachment{a, b}, 1024))
	})

	t.Run("one byte over ceiling rejected with size error", func(t *testing.T) {
		a := form.Attachment{Filename: "a.pdf", ContentType: "application/pdf", Size: 600}
		b := form.Attachment{Filename: "b.pdf", ContentType: "application/pdf", Size: 425}
		err := form.CheckAttachments([]form.Attachment{a, b}, 1024)
		assert.ErrorIs(t, err, form.ErrTotalSizeExceeded)
		assert.NotErrorIs(t, err, form.ErrUnsupportedFileType)
	})
}

func TestChecked(t *testing.T) {
	assert.True(t, form.Checked("on"))
	assert.True(t, form.Checked("true"))
	assert.False(t, form.Checked(""))
	assert.False(t, form.Checked("false"))
}

func TestNewValidatorTags(t *testing.T) {
	v := form.NewValidator()

	ok := form.Application{Surname: "Banda", Firstname: "Joseph", NRC: "123456/78/9", Cell: "0971234567"}
	assert.NoError(t, v.Struct(&ok))

	badNRC := ok
	badNRC.NRC = "12345"
	assert.Error(t, v.Struct(&badNRC))

	badCell := ok
	badCell.Cell = "12345"
	assert.Error(t, v.Struct(&badCell))

	// Optional email only checked when present.
	withEmail := ok
	withEmail.Email = "joseph@example.com"
	assert.NoError(t, v.Struct(&withEmail))
	withEmail.Email = "nope"
	assert.Error(t, v.Struct(&withEmail))
}
