package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// erNoSuchTable is the server error returned when DESCRIBE targets a missing table.
const erNoSuchTable = 1146

type MysqlDialect struct{}

// Column types for model field types, following the ORM's MySQL backend
// naming.
var mysqlDataTypes = map[string]string{
	"AutoField":                  "integer AUTO_INCREMENT",
	"BigAutoField":               "bigint AUTO_INCREMENT",
	"BooleanField":               "bool",
	"NullBooleanField":           "bool",
	"CharField":                  "varchar({max_length})",
	"CommaSeparatedIntegerField": "varchar({max_length})",
	"EmailField":                 "varchar({max_length})",
	"SlugField":                  "varchar({max_length})",
	"URLField":                   "varchar({max_length})",
	"FileField":                  "varchar({max_length})",
	"ImageField":                 "varchar({max_length})",
	"FilePathField":              "varchar({max_length})",
	"DateField":                  "date",
	"DateTimeField":              "datetime",
	"TimeField":                  "time",
	"DecimalField":               "numeric({max_digits}, {decimal_places})",
	"FloatField":                 "double precision",
	"IntegerField":               "integer",
	"BigIntegerField":            "bigint",
	"SmallIntegerField":          "smallint",
	"PositiveIntegerField":       "integer UNSIGNED",
	"PositiveSmallIntegerField":  "smallint UNSIGNED",
	"IPAddressField":             "char(15)",
	"GenericIPAddressField":      "char(39)",
	"TextField":                  "longtext",
}

func (d *MysqlDialect) TablesQuery() string {
	return "SHOW TABLES"
}

func (d *MysqlDialect) DescribeQuery(table string) string {
	return "DESCRIBE " + d.QuoteName(table)
}

// IsTableNotFound reports whether err is the server's "table doesn't exist" error.
func (d *MysqlDialect) IsTableNotFound(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == erNoSuchTable
	}
	return false
}

func (d *MysqlDialect) QuoteName(name string) string {
	if strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") {
		return name // Quoting once is enough.
	}
	return "`" + name + "`"
}

func (d *MysqlDialect) MaxNameLength() int {
	return 64
}

func (d *MysqlDialect) DataType(fieldType string) (string, bool) {
	t, ok := mysqlDataTypes[fieldType]
	return t, ok
}

func (d *MysqlDialect) RelDataType(pkType string) string {
	// A reference to an auto-increment key is a plain column of the same width.
	t := strings.TrimSpace(pkType)
	if i := strings.Index(strings.ToUpper(t), " AUTO_INCREMENT"); i >= 0 {
		t = t[:i]
	}
	return t
}

func (d *MysqlDialect) TablespaceSQL(tablespace string, inline bool) string {
	if tablespace == "" {
		return ""
	}
	return fmt.Sprintf("TABLESPACE %s", d.QuoteName(tablespace))
}

func (d *MysqlDialect) DeferrableSQL() string {
	return ""
}

func (d *MysqlDialect) TableSuffix() string {
	return ""
}
