package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/okian/arthursden/internal/adapters/export"
	"github.com/okian/arthursden/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteCSV(t *testing.T) {
	Convey("Given a single product priced in pounds", t, func() {
		products := []model.Product{{
			ID:          1,
			Title:       "Name Sign, Oak",
			Shop:        "WoodCraftStudioUK",
			Price:       29.99,
			Currency:    "GBP",
			Views:       1200,
			Favorites:   80,
			WeeklySales: 32,
			Revenue:     3838,
			Priority:    model.PriorityHigh,
			SalesTrend:  "+12%",
			SearchTerm:  "name sign",
			URL:         "https://www.etsy.com/listing/1",
		}}

		var buf bytes.Buffer
		err := export.WriteCSV(&buf, products)

		Convey("Then it should write a header and one row", func() {
			So(err, ShouldBeNil)

			rows, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0], ShouldResemble, export.Header)

			row := rows[1]
			So(row[0], ShouldEqual, "Name Sign, Oak")
			So(row[2], ShouldEqual, "£29.99")
			So(row[3], ShouldEqual, "1200")
			So(row[5], ShouldEqual, "32")
			So(row[6], ShouldEqual, "£3,838")
			So(row[7], ShouldEqual, "High")
			So(row[8], ShouldEqual, "+12%")
			So(row[10], ShouldEqual, "https://www.etsy.com/listing/1")
		})
	})

	Convey("Given a product whose title looks like a formula", t, func() {
		var buf bytes.Buffer
		err := export.WriteCSV(&buf, []model.Product{{Title: "=HYPERLINK(\"x\")", Currency: "USD", Price: 5}})

		Convey("Then the cell should be neutralised", func() {
			So(err, ShouldBeNil)
			rows, _ := csv.NewReader(&buf).ReadAll()
			So(rows[1][0], ShouldStartWith, "'=")
			So(rows[1][2], ShouldEqual, "$5.00")
		})
	})

	Convey("Given a product found under an escaped search term", t, func() {
		var buf bytes.Buffer
		err := export.WriteCSV(&buf, []model.Product{{Title: "Paint Kit", Currency: "USD", SearchTerm: "arts &amp; crafts"}})

		Convey("Then the Search Term cell should hold the plain term", func() {
			So(err, ShouldBeNil)
			rows, _ := csv.NewReader(&buf).ReadAll()
			So(rows[1][9], ShouldEqual, "arts & crafts")
		})
	})

	Convey("Given a username", t, func() {
		So(export.Filename("admin"), ShouldEqual, "arthursden_intelligence_admin.csv")
		So(export.Filename("a b/c"), ShouldEqual, "arthursden_intelligence_a_b_c.csv")
	})
}
