package dco

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dontRequireSignoffFor(allowed string) SignoffRequiredFunc {
	return func(_ context.Context, login string) (bool, error) {
		return login != allowed, nil
	}
}

func evaluate(t *testing.T, required SignoffRequiredFunc, commits ...Commit) Verdict {
	t.Helper()
	v, err := Evaluate(context.Background(), commits, required)
	require.NoError(t, err)
	return v
}

func failure(description string) Verdict {
	return Verdict{State: StateFailure, Description: description, TargetURL: TargetURL}
}

func TestEvaluate_Signoff(t *testing.T) {
	c := Commit{
		Message: "Hello world\n\nSigned-off-by: Brandon Keepers <bkeepers@github.com>",
		Author:  Author{Name: "Brandon Keepers", Email: "bkeepers@github.com"},
	}
	assert.Equal(t, Success(), evaluate(t, Always, c))
}

func TestEvaluate_MergeCommit(t *testing.T) {
	c := Commit{
		Message: "mergin stuff",
		Author:  Author{Name: "Brandon Keepers", Email: "bkeepers@github.com"},
		Parents: []string{"1", "2"},
	}
	lookup := func(context.Context, string) (bool, error) {
		t.Fatal("merge commits should not be looked up")
		return true, nil
	}
	assert.Equal(t, Success(), evaluate(t, lookup, c))
}

func TestEvaluate_MissingSignoff(t *testing.T) {
	c := Commit{
		Message: "yolo",
		Author:  Author{Name: "Brandon Keepers", Email: "bkeepers@github.com", Login: "test"},
	}
	assert.Equal(t, failure("The sign-off is missing."), evaluate(t, Always, c))
}

func TestEvaluate_Mismatch(t *testing.T) {
	for _, tc := range []struct {
		name    string
		message string
		author  Author
		want    string
	}{
		{
			name:    "name",
			message: "signed off by wrong author\n\nSigned-off-by: bex <bex@disney.com>",
			author:  Author{Name: "hiimbex", Email: "bex@disney.com"},
			want:    `Expected "hiimbex <bex@disney.com>", but got "bex <bex@disney.com>".`,
		},
		{
			name:    "email",
			message: "signed off by wrong author\n\nSigned-off-by: bex <bex@disney.com>",
			author:  Author{Name: "bex", Email: "hiimbex@disney.com"},
			want:    `Expected "bex <hiimbex@disney.com>", but got "bex <bex@disney.com>".`,
		},
		{
			name:    "both",
			message: "signed off by wrong author\n\nSigned-off-by: hiimbex <hiimbex@disney.com>",
			author:  Author{Name: "bex", Email: "bex@disney.com"},
			want:    `Expected "bex <bex@disney.com>", but got "hiimbex <hiimbex@disney.com>".`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := Commit{Message: tc.message, Author: tc.author}
			assert.Equal(t, failure(tc.want), evaluate(t, Always, c))
		})
	}
}

func TestEvaluate_FirstFailureWins(t *testing.T) {
	bex := Author{Name: "bex", Email: "bex@disney.com"}
	wrong := Commit{
		Message: "signed off by wrong author\n\nSigned-off-by: hiimbex <hiimbex@disney.com>",
		Author:  bex,
	}
	right := Commit{
		Message: "signed off correctly\n\nSigned-off-by: bex <bex@disney.com>",
		Author:  bex,
	}
	want := failure(`Expected "bex <bex@disney.com>", but got "hiimbex <hiimbex@disney.com>".`)

	assert.Equal(t, want, evaluate(t, Always, wrong, right))
	assert.Equal(t, want, evaluate(t, Always, right, wrong))
	assert.Equal(t, Success(), evaluate(t, Always, right, right))
}

func TestEvaluate_ShortCircuits(t *testing.T) {
	unsigned := Commit{Message: "first", Author: Author{Name: "a", Email: "a@example.com", Login: "a"}}
	signed := Commit{
		Message: "second\n\nSigned-off-by: b <b@example.com>",
		Author:  Author{Name: "b", Email: "b@example.com", Login: "b"},
	}
	var looked []string
	lookup := func(_ context.Context, login string) (bool, error) {
		looked = append(looked, login)
		return true, nil
	}
	assert.Equal(t, failure("The sign-off is missing."), evaluate(t, lookup, unsigned, signed, unsigned))
	assert.Equal(t, []string{"a"}, looked)
}

func TestEvaluate_Truncates(t *testing.T) {
	c := Commit{
		Message: "signed off correctly\n\nSigned-off-by: hiimbex <hiimbex@disney.com>",
		Author: Author{
			Name:  "bex is the best name ever and is also very long",
			Email: "bexMyVeryLongAlsoButImportantEmail@disney.com",
		},
	}
	v := evaluate(t, Always, c)
	assert.Equal(t, failure(`Expected "bex is the best name ever and is also very long <bexMyVeryLongAlsoButImportantEmail@disney.com>", but got "hiimbex <hiimbex@disney`), v)
	assert.Len(t, v.Description, MaxDescriptionLength)
}

func TestEvaluate_CaseInsensitive(t *testing.T) {
	c := Commit{
		Message: "signed off correctly\n\nsigned-off-by: hiimbex <hiimbex@disney.com>",
		Author:  Author{Name: "hiimbex", Email: "hiimbex@disney.com"},
	}
	assert.Equal(t, Success(), evaluate(t, Always, c))
}

func TestEvaluate_InvalidEmail(t *testing.T) {
	c := Commit{
		Message: "bad email\n\nsigned-off-by: hiimbex <hiimbex@bexo>",
		Author:  Author{Name: "hiimbex", Email: "hiimbex@bexo"},
	}
	assert.Equal(t, failure("hiimbex@bexo is not a valid email address."), evaluate(t, Always, c))
}

func TestEvaluate_InvalidAuthorEmailWithValidSignoff(t *testing.T) {
	c := Commit{
		Message: "Signed-off-by: hiimbex <hiimbex@disney.com>",
		Author:  Author{Name: "hiimbex", Email: "not-an-email"},
	}
	assert.Equal(t, failure("not-an-email is not a valid email address."), evaluate(t, Always, c))
}

func TestEvaluate_OrganizationMember(t *testing.T) {
	c := Commit{
		Message:      "yolo",
		Author:       Author{Name: "Lorant Pinter", Email: "lorant.pinter@gmail.com", Login: "lptr"},
		Verification: &Verification{Verified: true},
	}
	assert.Equal(t, Success(), evaluate(t, dontRequireSignoffFor("lptr"), c))

	c.Verification = &Verification{Verified: false}
	assert.Equal(t, failure("Commit by organization member is not verified."), evaluate(t, dontRequireSignoffFor("lptr"), c))

	c.Verification = nil
	assert.Equal(t, failure("Commit by organization member is not verified."), evaluate(t, dontRequireSignoffFor("lptr"), c))
}

func TestEvaluate_LookupError(t *testing.T) {
	lookupErr := errors.New("membership lookup failed")
	lookup := func(context.Context, string) (bool, error) {
		return false, lookupErr
	}
	c := Commit{Message: "yolo", Author: Author{Login: "someone"}}
	v, err := Evaluate(context.Background(), []Commit{c}, lookup)
	assert.True(t, err == lookupErr, "error should be passed through unwrapped")
	assert.Equal(t, Verdict{}, v)
}

func TestEvaluate_Empty(t *testing.T) {
	assert.Equal(t, Success(), evaluate(t, Always))
}

func TestFailure_TruncatesCharacters(t *testing.T) {
	v := Failure(strings.Repeat("é", 200))
	assert.Equal(t, strings.Repeat("é", MaxDescriptionLength), v.Description)

	v = Failure("short")
	assert.Equal(t, "short", v.Description)
}

func TestFindSignoff(t *testing.T) {
	s, ok := FindSignoff("fix\n\nSigned-off-by: A <a@example.com>\nSigned-off-by: B <b@example.com>")
	require.True(t, ok)
	assert.Equal(t, Signoff{Name: "A", Email: "a@example.com"}, s)

	_, ok = FindSignoff("fix\n\n  Signed-off-by: A <a@example.com>")
	assert.False(t, ok, "sign-off must start the line")

	_, ok = FindSignoff("Signed-off-by: A a@example.com")
	assert.False(t, ok)
}

func TestFindSignoffLineEndings(t *testing.T) {
	want := Signoff{Name: "Brandon Keepers", Email: "bkeepers@github.com"}
	for name, message := range map[string]string{
		"LF, last line":            "Fix thing\n\nSigned-off-by: Brandon Keepers <bkeepers@github.com>",
		"CRLF":                     "Fix thing\r\n\r\nSigned-off-by: Brandon Keepers <bkeepers@github.com>\r\n",
		"CRLF, last line":          "Fix thing\r\n\r\nSigned-off-by: Brandon Keepers <bkeepers@github.com>",
		"lone CR":                  "Fix thing\r\rSigned-off-by: Brandon Keepers <bkeepers@github.com>\rmore",
		"line separator":           "Fix thing\u2028Signed-off-by: Brandon Keepers <bkeepers@github.com>\u2028",
		"paragraph separator":      "Fix thing\u2029Signed-off-by: Brandon Keepers <bkeepers@github.com>\u2029",
		"followed by trailers":     "Fix thing\n\nSigned-off-by: Brandon Keepers <bkeepers@github.com>\nReviewed-by: Someone <s@example.com>\n",
		"followed by CRLF trailer": "Fix thing\r\n\r\nSigned-off-by: Brandon Keepers <bkeepers@github.com>\r\nAcked-by: X <x@example.com>\r\n",
	} {
		got, ok := FindSignoff(message)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestFindSignoffKeywordFoldsASCIIOnly(t *testing.T) {
	s, ok := FindSignoff("SIGNED-OFF-BY: A <a@example.com>")
	require.True(t, ok)
	assert.Equal(t, Signoff{Name: "A", Email: "a@example.com"}, s)

	_, ok = FindSignoff("\u017figned-off-by: A <a@example.com>")
	assert.False(t, ok, "long s does not fold to s")

	_, ok = FindSignoff("Signed-off-\u212Ay: A <a@example.com>")
	assert.False(t, ok, "Kelvin sign is not a letter of the keyword")
}

func TestEvaluateCRLFMessage(t *testing.T) {
	commits := []Commit{{
		Message: "Fix thing\r\n\r\nSigned-off-by: Brandon Keepers <bkeepers@github.com>\r\n",
		Author:  Author{Name: "Brandon Keepers", Email: "bkeepers@github.com", Login: "bkeepers"},
		Parents: []string{"a"},
	}}
	v, err := Evaluate(context.Background(), commits, Always)
	require.NoError(t, err)
	assert.Equal(t, Success(), v)
}
