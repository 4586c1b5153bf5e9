package sanitize_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/arthursden/internal/domain/sanitize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestText(t *testing.T) {
	Convey("Given free-form text", t, func() {
		Convey("When it contains markup", func() {
			out := sanitize.Text("  <script>alert('x')</script>  ", 1000)

			Convey("Then it should be trimmed and escaped", func() {
				So(out, ShouldEqual, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;")
			})
		})

		Convey("When it is empty or blank", func() {
			So(sanitize.Text("", 10), ShouldEqual, "")
			So(sanitize.Text("   ", 10), ShouldEqual, "")
		})

		Convey("When it exceeds the limit", func() {
			Convey("Then it should be cut on rune boundaries", func() {
				So(sanitize.Text("héllo wörld", 5), ShouldEqual, "héllo")
			})

			Convey("Then entities should never be split", func() {
				So(sanitize.Text("ab&cd", 4), ShouldEqual, "ab")
			})
		})

		Convey("When it is cleaned twice", func() {
			once := sanitize.Text("Tom & Jerry's <b>nursery</b>", 30)

			Convey("Then the second pass should change nothing", func() {
				So(sanitize.Text(once, 30), ShouldEqual, once)
			})
		})
	})
}

func TestUsername(t *testing.T) {
	Convey("Given candidate usernames", t, func() {
		Convey("Then too short names should fail", func() {
			_, err := sanitize.Username("ab")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Username must be at least 3 characters")
			So(errors.Is(err, sanitize.ErrInvalid), ShouldBeTrue)
		})

		Convey("Then a three character name should pass", func() {
			name, err := sanitize.Username("abc")
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "abc")
		})

		Convey("Then a 51 character name should fail", func() {
			_, err := sanitize.Username(strings.Repeat("a", 51))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Username must be less than 50 characters")
		})

		Convey("Then illegal characters should fail", func() {
			_, err := sanitize.Username("bad name!")
			So(err, ShouldNotBeNil)

			var verr *sanitize.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "username")
		})

		Convey("Then hyphens and underscores are allowed", func() {
			_, err := sanitize.Username("shop_owner-1")
			So(err, ShouldBeNil)
		})
	})
}

func TestPasswordAndEmail(t *testing.T) {
	Convey("Given passwords", t, func() {
		So(sanitize.Password(""), ShouldNotBeNil)
		So(sanitize.Password("12345"), ShouldNotBeNil)
		So(sanitize.Password("123456"), ShouldBeNil)
		So(sanitize.Password(strings.Repeat("p", 129)), ShouldNotBeNil)
	})

	Convey("Given emails", t, func() {
		Convey("Then empty is accepted", func() {
			email, err := sanitize.Email("")
			So(err, ShouldBeNil)
			So(email, ShouldBeEmpty)
		})

		Convey("Then a conventional address is accepted", func() {
			email, err := sanitize.Email(" owner@example.co.uk ")
			So(err, ShouldBeNil)
			So(email, ShouldEqual, "owner@example.co.uk")
		})

		Convey("Then malformed or oversized addresses are rejected", func() {
			_, err := sanitize.Email("not-an-email")
			So(err, ShouldNotBeNil)

			_, err = sanitize.Email(strings.Repeat("a", 250) + "@example.com")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Email is too long")
		})
	})
}

func TestSearchTerms(t *testing.T) {
	Convey("Given a list of search terms", t, func() {
		Convey("When it mixes valid, short and non-string entries", func() {
			out, err := sanitize.SearchTerms([]any{" baby name sign ", "a", 42, "growth chart", nil})

			Convey("Then only the usable strings should remain", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []string{"baby name sign", "growth chart"})
			})
		})

		Convey("When it is empty", func() {
			out, err := sanitize.SearchTerms(nil)

			Convey("Then it should succeed with no terms", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When nothing survives cleaning", func() {
			_, err := sanitize.SearchTerms([]any{"x", 7, " "})

			Convey("Then it should fail", func() {
				So(errors.Is(err, sanitize.ErrInvalid), ShouldBeTrue)
			})
		})

		Convey("When there are more than the maximum", func() {
			in := make([]any, 25)
			for i := range in {
				in[i] = "term " + strings.Repeat("x", i+1)
			}
			out, err := sanitize.SearchTerms(in)

			Convey("Then only the first entries should be kept", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, sanitize.MaxSearchTerms)
				So(out[0], ShouldEqual, "term x")
			})
		})

		Convey("When the output is cleaned again", func() {
			first, err := sanitize.SearchTerms([]any{"Fish & Chips <b>", strings.Repeat("é", 150), "  spaced   "})
			So(err, ShouldBeNil)
			second, err := sanitize.SearchTerms(sanitize.Strings(first))

			Convey("Then it should be unchanged", func() {
				So(err, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestShopNames(t *testing.T) {
	Convey("Given a watchlist of shop names", t, func() {
		out := sanitize.ShopNames([]any{"WoodCraft!", "Café Bébé", "x", 3, "<Party>Perfect", strings.Repeat("s", 60)})

		Convey("Then names should be transliterated and stripped", func() {
			So(out[0], ShouldEqual, "WoodCraft")
			So(out[1], ShouldEqual, "Cafe Bebe")
			So(out[2], ShouldEqual, "PartyPerfect")
		})

		Convey("Then short and non-string entries should be dropped", func() {
			So(len(out), ShouldEqual, 4)
		})

		Convey("Then long names should be capped", func() {
			So(len(out[3]), ShouldEqual, sanitize.MaxShopNameLen)
		})
	})

	Convey("Given more shops than allowed", t, func() {
		in := make([]any, 60)
		for i := range in {
			in[i] = "Shop"
		}
		So(len(sanitize.ShopNames(in)), ShouldEqual, sanitize.MaxShopNames)
	})
}

func TestKeyword(t *testing.T) {
	Convey("Given a stored search term", t, func() {
		Convey("Then entities are decoded and whitespace collapsed", func() {
			So(sanitize.Keyword("  fish &amp; chips\t\nsign ", 200), ShouldEqual, "fish & chips sign")
		})

		Convey("Then long keywords are cut", func() {
			So(sanitize.Keyword(strings.Repeat("a", 250), 200), ShouldHaveLength, 200)
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("Given the truncate helper", t, func() {
		So(sanitize.Truncate("short", 10, "..."), ShouldEqual, "short")
		So(sanitize.Truncate("Personalised nursery sign", 10, "..."), ShouldEqual, "Persona...")
		So(sanitize.Truncate("abcdef", 2, "..."), ShouldEqual, "ab")
	})

	Convey("Given candidate URLs", t, func() {
		So(sanitize.IsSafeURL("https://www.etsy.com/listing/1"), ShouldBeTrue)
		So(sanitize.IsSafeURL("https://i.etsystatic.com/a.jpg"), ShouldBeTrue)
		So(sanitize.IsSafeURL("https://etsy.com.evil.example/x"), ShouldBeFalse)
		So(sanitize.IsSafeURL("javascript:alert(1)"), ShouldBeFalse)
		So(sanitize.IsSafeURL(""), ShouldBeFalse)
	})
}
