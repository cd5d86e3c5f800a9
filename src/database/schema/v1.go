package schema

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// 版本 1 之前遗留的表，迁移时删除
const (
	legacyTableVersion = "Version"
	legacyTableEvents  = "Events"
)

func version1Tables() []*Table {
	return []*Table{
		// upgrade_dummy 必须保留：1.x 系列的结构检查遇到未知表会提示“数据库过新”
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
		{Name: TableResults, Columns: []Column{
			pk("Resultkey"),
			text("pindex", "NOT NULL"),
			text("date", "NOT NULL"),
			text("point", "NOT NULL"),
			integer("place", "NOT NULL"),
			integer("out", "NOT NULL"),
			textDefault("sector"),
			textDefault("type"),
			textDefault("category"),
			textDefault("wind"),
			textDefault("weather"),
			textDefault("put"),
			textDefault("back"),
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

func version1() *Version {
	v := &Version{
		Number: 1,
		Tables: version1Tables(),
		Indexes: []Index{
			{Name: "pindex_pigeons", Table: TablePigeons, Columns: []string{"pindex"}},
			{Name: "date_racepoint", Table: TableResults, Columns: []string{"date", "point"}},
		},
	}
	v.Step = StepFunc(func(s Session) error {
		return migrateTo1(s, v)
	})
	return v
}

// migrateTo1 将版本登记之前的数据库整理成版本 1
func migrateTo1(s Session, v *Version) error {
	logger := logrus.WithField("to_version", v.Number)
	logger.Debug("migrating from 0 to 1")

	// 先补齐缺失的表，后面的检查依赖这些表存在
	for _, t := range v.Tables {
		if err := s.AddTable(t.Name, t.ColumnsSQL()); err != nil {
			return err
		}
	}

	pigeonCols, err := s.ColumnNames(TablePigeons)
	if err != nil {
		return err
	}
	if containsFold(pigeonCols, "alive") {
		logger.Debug("renaming column alive to active")
		pigeons, _ := v.Table(TablePigeons)
		if err := s.RecreateTableRenaming(TablePigeons, pigeons.ColumnsSQL(), map[string]string{"active": "alive"}); err != nil {
			return err
		}
	}

	if err := addMissingColumns(s, v, TableAddresses, "latitude", "longitude"); err != nil {
		return err
	}
	if err := addMissingColumns(s, v, TableRacepoints, "unit"); err != nil {
		return err
	}

	for _, legacy := range []string{legacyTableVersion, legacyTableEvents} {
		logger.WithField("table", legacy).Debug("removing legacy table")
		if err := s.RemoveTable(legacy); err != nil {
			return err
		}
	}

	// 所有表补上列约束
	for _, t := range v.Tables {
		logger.WithField("table", t.Name).Debug("recreating table")
		if err := s.RecreateTable(t.Name, t.ColumnsSQL()); err != nil {
			return err
		}
	}

	// 历史版本有时把性别存成了字符串
	logger.Debug("casting pigeon sex values to integers")
	if err := s.Exec("UPDATE " + TablePigeons + " SET sex=CAST(sex AS integer)"); err != nil {
		return err
	}

	if err := backfillDefaults(s, v); err != nil {
		return err
	}

	logger.Debug("creating indexes")
	return v.CreateIndexes(s)
}

func addMissingColumns(s Session, v *Version, table string, columns ...string) error {
	existing, err := s.ColumnNames(table)
	if err != nil {
		return err
	}
	t, ok := v.Table(table)
	if !ok {
		return &UnknownTableError{Version: v.Number, Table: table}
	}
	for _, name := range columns {
		if containsFold(existing, name) {
			continue
		}
		col, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("column %q is not defined in table %s (version %d)", name, table, v.Number)
		}
		logrus.WithFields(logrus.Fields{"table": table, "column": name}).Debug("adding missing column")
		if err := s.AddColumn(table, col.SQL()); err != nil {
			return err
		}
	}
	return nil
}

// backfillDefaults 将 NULL 值回填为声明的默认值，早期版本的表没有默认值约束
// 默认值字面量来自静态的表定义，直接拼接进语句
func backfillDefaults(s Session, v *Version) error {
	logrus.WithField("to_version", v.Number).Debug("updating NULL values to their declared defaults")
	for _, t := range v.Tables {
		for _, c := range t.Columns {
			def, ok := c.Default()
			if !ok {
				continue
			}
			col := QuoteIdent(c.Name)
			query := fmt.Sprintf("UPDATE %s SET %s=%s WHERE %s IS NULL", t.Name, col, def, col)
			if err := s.Exec(query); err != nil {
				return err
			}
		}
	}
	return nil
}
