package schema

import (
	"github.com/sirupsen/logrus"
)

func version2Tables() []*Table {
	return []*Table{
		{Name: TableUpgradeDummy, Columns: []Column{text("dummy", "")}},
		{Name: TablePigeons, Columns: []Column{
			pk("Pigeonskey"),
			text("pindex", "UNIQUE NOT NULL"),
			text("band", "NOT NULL"),
			text("year", "NOT NULL"),
			integer("sex", "NOT NULL"),
			integer("show", "DEFAULT 1"),
			integer("active", "DEFAULT 1"),
			textDefault("colour"),
			textDefault("name"),
			textDefault("strain"),
			textDefault("loft"),
			textDefault("image"),
			textDefault("sire"),
			textDefault("yearsire"),
			textDefault("dam"),
			textDefault("yeardam"),
			textDefault("extra1"),
			textDefault("extra2"),
			textDefault("extra3"),
			textDefault("extra4"),
			textDefault("extra5"),
			textDefault("extra6"),
		}},
		// 新增 speed、windspeed、temperature，去掉 put、back
		{Name: TableResults, Columns: []Column{
			pk("Resultkey"),
			text("pindex", "NOT NULL"),
			text("date", "NOT NULL"),
			text("point", "NOT NULL"),
			integer("place", "NOT NULL"),
			integer("out", "NOT NULL"),
			{Name: "speed", Type: "REAL", Constraints: "DEFAULT 0.0"},
			textDefault("sector"),
			textDefault("type"),
			textDefault("category"),
			textDefault("wind"),
			textDefault("windspeed"),
			textDefault("weather"),
			textDefault("temperature"),
			integer("ownplace", "DEFAULT 0"),
			integer("ownout", "DEFAULT 0"),
			textDefault("comment"),
		}},
		{Name: TableBreeding, Columns: []Column{
			pk("Breedingkey"),
			text("sire", "NOT NULL"),
			text("dam", "NOT NULL"),
			text("date", "NOT NULL"),
			textDefault("laid1"),
			textDefault("hatched1"),
			textDefault("pindex1"),
			integer("success1", "DEFAULT 0"),
			textDefault("laid2"),
			textDefault("hatched2"),
			textDefault("pindex2"),
			integer("success2", "DEFAULT 0"),
			textDefault("clutch"),
			textDefault("box"),
			textDefault("comment"),
		}},
		{Name: TableMedia, Columns: []Column{
			pk("Mediakey"),
			text("pindex", "NOT NULL"),
			text("type", "NOT NULL"),
			text("path", "NOT NULL"),
			textDefault("title"),
			textDefault("description"),
		}},
		{Name: TableMedication, Columns: []Column{
			pk("Medicationkey"),
			text("medid", "NOT NULL"),
			text("pindex", "NOT NULL"),
			text("date", "NOT NULL"),
			textDefault("description"),
			textDefault("doneby"),
			textDefault("medication"),
			textDefault("dosage"),
			textDefault("comment"),
			integer("vaccination", "DEFAULT 0"),
		}},
		{Name: TableSold, Columns: []Column{
			pk("Soldkey"),
			text("pindex", "NOT NULL"),
			textDefault("person"),
			textDefault("date"),
			textDefault("info"),
		}},
		{Name: TableLost, Columns: []Column{
			pk("Lostkey"),
			text("pindex", "NOT NULL"),
			textDefault("racepoint"),
			textDefault("date"),
			textDefault("info"),
		}},
		{Name: TableDead, Columns: []Column{
			pk("Deadkey"),
			text("pindex", "NOT NULL"),
			textDefault("date"),
			textDefault("info"),
		}},
		{Name: TableBreeder, Columns: []Column{
			pk("Breederkey"),
			text("pindex", "NOT NULL"),
			textDefault("start"),
			textDefault("end"),
			textDefault("info"),
		}},
		{Name: TableOnloan, Columns: []Column{
			pk("Onloankey"),
			text("pindex", "NOT NULL"),
			textDefault("loaned"),
			textDefault("back"),
			textDefault("person"),
			textDefault("info"),
		}},
		{Name: TableWidow, Columns: []Column{
			pk("Widowkey"),
			text("pindex", "NOT NULL"),
			textDefault("partner"),
			textDefault("info"),
		}},
		{Name: TableAddresses, Columns: []Column{
			pk("Addresskey"),
			text("name", "NOT NULL"),
			textDefault("street"),
			textDefault("code"),
			textDefault("city"),
			textDefault("country"),
			textDefault("phone"),
			textDefault("email"),
			textDefault("comment"),
			integer("me", "DEFAULT 0"),
			textDefault("latitude"),
			textDefault("longitude"),
		}},
		lookupTable(TableColours, "Colourkey", "colour"),
		lookupTable(TableLofts, "Loftkey", "loft"),
		lookupTable(TableStrains, "Strainkey", "strain"),
		{Name: TableRacepoints, Columns: []Column{
			pk("Racepointkey"),
			text("racepoint", "UNIQUE NOT NULL"),
			textDefault("xco"),
			textDefault("yco"),
			textDefault("distance"),
			integer("unit", "DEFAULT 0"),
		}},
		lookupTable(TableTypes, "Typekey", "type"),
		lookupTable(TableCategories, "Categorykey", "category"),
		lookupTable(TableSectors, "Sectorkey", "sector"),
		lookupTable(TableWeather, "Weatherkey", "weather"),
		lookupTable(TableWind, "Windkey", "wind"),
	}
}

func version2() *Version {
	v := &Version{
		Number: 2,
		Tables: version2Tables(),
		Indexes: []Index{
			{Name: "pindex_pigeons", Table: TablePigeons, Columns: []string{"pindex"}},
			{Name: "date_racepoint", Table: TableResults, Columns: []string{"date", "point"}},
		},
	}
	v.Step = StepFunc(func(s Session) error {
		return migrateTo2(s, v)
	})
	return v
}

// migrateTo2 更新比赛成绩表结构并新增鳏夫状态表
func migrateTo2(s Session, v *Version) error {
	logger := logrus.WithField("to_version", v.Number)
	logger.Debug("migrating from 1 to 2")

	// 按列名投影复制，Resultkey 随行保留，新列取默认值
	logger.WithField("table", TableResults).Debug("updating results table schema")
	results, _ := v.Table(TableResults)
	if err := s.RecreateTable(TableResults, results.ColumnsSQL()); err != nil {
		return err
	}

	logger.WithField("table", TableWidow).Debug("adding widow status table")
	widow, _ := v.Table(TableWidow)
	if err := s.AddTable(TableWidow, widow.ColumnsSQL()); err != nil {
		return err
	}

	logger.Debug("creating indexes")
	return v.CreateIndexes(s)
}
