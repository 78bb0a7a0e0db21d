package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/heatsheet/internal/adapters/ingest"
	"github.com/okian/heatsheet/internal/domain/days"
)

const startList = "Meet results export,,,,,,,\n" +
	",,,,,,,\n" +
	"項次,組次,年齡組,性別,比賽項目,姓名,單位,報名成績\n" +
	"1,1/2,10歲,男,50自由式,王小明,A隊,00:40.50\n" +
	"1,1/2,10歲,男,50自由式,李大同,B隊,00:42\n" +
	",,,,,,,\n" +
	"1,2/2,10歲,男,50自由式,陳一,C隊,\n" +
	"30,1/1,11歲,女,100蛙式,林二,A隊,bad\n"

func TestHeaderRow(t *testing.T) {
	Convey("Given grids with and without a header row", t, func() {
		Convey("The first row naming five known columns is chosen", func() {
			grid := [][]string{
				{"title"},
				{"項次", "組次", "年齡組", "性別", "比賽項目"},
			}
			So(ingest.HeaderRow(grid), ShouldEqual, 1)
		})

		Convey("Full-width and English headers are folded", func() {
			grid := [][]string{{"ＥＶＥＮＴ", " Heat ", "Age Group", "gender", "Event Name", "name"}}
			So(ingest.HeaderRow(grid), ShouldEqual, 0)
		})

		Convey("Four hits are not enough", func() {
			grid := [][]string{{"項次", "組次", "年齡組", "性別"}}
			So(ingest.HeaderRow(grid), ShouldEqual, -1)
		})

		Convey("Rows past the scan limit are ignored", func() {
			grid := make([][]string, 31)
			grid[30] = []string{"項次", "組次", "年齡組", "性別", "比賽項目", "姓名"}
			So(ingest.HeaderRow(grid), ShouldEqual, -1)
		})
	})
}

func TestParseDescriptor(t *testing.T) {
	Convey("Heat descriptors split on the slash", t, func() {
		i, n := ingest.ParseDescriptor("3/5")
		So(i, ShouldEqual, 3)
		So(n, ShouldEqual, 5)

		i, n = ingest.ParseDescriptor("4")
		So(i, ShouldEqual, 4)
		So(n, ShouldEqual, 0)

		i, n = ingest.ParseDescriptor("x/y")
		So(i, ShouldEqual, 0)
		So(n, ShouldEqual, 0)
	})
}

func TestLoadCSV(t *testing.T) {
	Convey("Given a CSV start list", t, func() {
		batch, err := ingest.Load(context.Background(), "meet.csv", strings.NewReader(startList), days.DefaultTable())
		So(err, ShouldBeNil)
		So(batch.Source, ShouldEqual, "meet.csv")
		So(batch.Records, ShouldEqual, 4)
		So(batch.Heats, ShouldHaveLength, 3)

		Convey("Rows are grouped into heats", func() {
			h := batch.Heats[0]
			So(h.Event, ShouldEqual, 1)
			So(h.Index, ShouldEqual, 1)
			So(h.Count, ShouldEqual, 2)
			So(h.Participants, ShouldResemble, []string{"王小明", "李大同"})
			So(h.RecordedDurations, ShouldResemble, []float64{40.5, 42})
			So(h.DayKey, ShouldEqual, "d1")
		})

		Convey("Blank and malformed results are absent", func() {
			So(batch.Heats[1].RecordedDurations, ShouldBeEmpty)
			So(batch.Heats[2].RecordedDurations, ShouldBeEmpty)
		})

		Convey("Day keys follow the event ranges", func() {
			So(batch.Heats[2].Event, ShouldEqual, 30)
			So(batch.Heats[2].DayKey, ShouldEqual, "d2")
		})
	})

	Convey("A file without a header row is rejected whole", t, func() {
		_, err := ingest.Load(context.Background(), "x.csv", strings.NewReader("a,b\n1,2\n"), days.DefaultTable())
		So(errors.Is(err, ingest.ErrNoHeaderRow), ShouldBeTrue)
	})

	Convey("Unknown extensions are rejected", t, func() {
		_, err := ingest.Load(context.Background(), "x.pdf", strings.NewReader(""), days.DefaultTable())
		So(errors.Is(err, ingest.ErrUnsupportedFormat), ShouldBeTrue)
	})
}

func TestLoadXLSX(t *testing.T) {
	Convey("Given a workbook with an All sheet", t, func() {
		f := excelize.NewFile()
		_, err := f.NewSheet("All")
		So(err, ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}), ShouldBeNil)
		So(f.SetSheetRow("All", "A1", &[]any{"項次", "組次", "年齡組", "性別", "比賽項目", "姓名", "單位", "報名成績"}), ShouldBeNil)
		So(f.SetSheetRow("All", "A2", &[]any{"5", "1/1", "12歲", "女", "200混合式", "張三", "D隊", "03:10"}), ShouldBeNil)
		buf, err := f.WriteToBuffer()
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		batch, err := ingest.Load(context.Background(), "meet.xlsx", bytes.NewReader(buf.Bytes()), days.DefaultTable())
		So(err, ShouldBeNil)
		So(batch.Heats, ShouldHaveLength, 1)
		So(batch.Heats[0].Event, ShouldEqual, 5)
		So(batch.Heats[0].RecordedDurations, ShouldResemble, []float64{190})
		So(batch.Heats[0].Participants, ShouldResemble, []string{"張三"})
	})
}
