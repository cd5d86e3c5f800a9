package schema

// 表名
const (
	TableUpgradeDummy = "upgrade_dummy"
	TablePigeons      = "Pigeons"
	TableResults      = "Results"
	TableBreeding     = "Breeding"
	TableMedia        = "Media"
	TableMedication   = "Medication"
	TableAddresses    = "Addresses"
	TableColours      = "Colours"
	TableRacepoints   = "Racepoints"
	TableTypes        = "Types"
	TableCategories   = "Categories"
	TableSectors      = "Sectors"
	TableLofts        = "Lofts"
	TableStrains      = "Strains"
	TableWeather      = "Weather"
	TableWind         = "Wind"
	TableSold         = "Sold"
	TableLost         = "Lost"
	TableDead         = "Dead"
	TableBreeder      = "Breeder"
	TableOnloan       = "Onloan"
	TableWidow        = "Widow"
)

// Builtin 返回随程序发布的版本集合
func Builtin() *Registry {
	return MustNewRegistry(version1(), version2())
}

// lookupTable 用于 "key + 唯一值" 形态的字典表（颜色、鸽舍、血统等）
func lookupTable(name, key, value string) *Table {
	return &Table{Name: name, Columns: []Column{
		pk(key),
		text(value, "UNIQUE NOT NULL"),
	}}
}
