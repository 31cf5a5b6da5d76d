package dataset

const (
	TableUser             = "user"
	TableCourse           = "course"
	TableResource         = "resource"
	TableContext          = "context"
	TableRole             = "role"
	TableRoleAssignments  = "role_assignments"
	TableCourseCategories = "course_categories"
	TableTag              = "tag"
	TableCategoryTag      = "category_tag"
	TableCourseTag        = "course_tag"
	TableResourceTag      = "resource_tag"
)

// TableNames lists every table of a generated dataset in export order.
var TableNames = []string{
	TableUser,
	TableCourse,
	TableResource,
	TableContext,
	TableRole,
	TableRoleAssignments,
	TableCourseCategories,
	TableTag,
	TableCategoryTag,
	TableCourseTag,
	TableResourceTag,
}

var UserColumns = []string{
	"id", "auth", "confirmed", "policyagreed", "deleted", "suspended", "mnethostid",
	"username", "password", "idnumber", "firstname", "lastname", "email", "emailstop",
	"icq", "skype", "yahoo", "aim", "msn", "phone1", "phone2", "institution", "department",
	"address", "city", "country", "lang", "calendartype", "theme", "timezone", "firstaccess",
	"lastaccess", "lastlogin", "currentlogin", "lastip", "secret", "picture", "url",
	"description", "descriptionformat", "mailformat", "maildigest", "maildisplay",
	"autosubscribe", "trackforums", "timecreated", "timemodified", "trustbitmask",
	"imagealt", "lastnamephonetic", "firstnamephonetic", "middlename", "alternatename",
	"moodlenetprofile",
}

var CourseColumns = []string{
	"id", "category", "sortorder", "fullname", "shortname", "idnumber", "summary", "summaryformat",
	"format", "showgrades", "newsitems", "startdate", "enddate", "relativedatesmode", "marker",
	"maxbytes", "legacyfiles", "showreports", "visible", "visibleold", "downloadcontent",
	"groupmode", "groupmodeforce", "defaultgroupingid", "lang", "calendartype", "theme",
	"timecreated", "timemodified", "requested", "enablecompletion", "completionnotify",
	"cacherev", "originalcourseid", "showactivitydates", "showcompletionconditions",
	"pdfexportfont", "course_level",
}

var ResourceColumns = []string{
	"id", "course", "name", "intro", "introformat", "tobemigrated", "legacyfiles",
	"legacyfileslast", "display", "displayoptions", "filterfiles", "revision",
	"timemodified", "resource_level", "feedback_score", "uploaded_by",
}

var ContextColumns = []string{"id", "contextlevel", "instanceid", "path", "depth", "locked"}

var RoleAssignmentColumns = []string{
	"id", "roleid", "contextid", "userid", "timemodified", "modifierid", "component", "itemid", "sortorder",
}

var CourseCategoryColumns = []string{
	"id", "name", "idnumber", "description", "descriptionformat", "parent", "sortorder",
	"coursecount", "visible", "visibleold", "timemodified", "depth", "path", "theme",
}

var RoleColumns = []string{"id", "name", "shortname", "description", "sortorder", "archetype"}

var (
	TagColumns         = []string{"id", "name"}
	CategoryTagColumns = []string{"id", "category_id", "tag_id"}
	CourseTagColumns   = []string{"id", "course_id", "tag_id"}
	ResourceTagColumns = []string{"id", "resource_id", "tag_id"}
)

type categorySeed struct {
	id          int64
	name        string
	description string
}

var categorySeeds = []categorySeed{
	{30, "Abilità Comunicative", "Sviluppo delle capacità di espressione, ascolto e interazione efficace."},
	{31, "Abilità Informatiche", "Competenze digitali e tecniche per l'uso consapevole delle tecnologie"},
	{32, "Competenze in Economia", "Conoscenze di base e avanzate in economia, finanza e gestione."},
	{33, "Sviluppo Personale", "Percorsi per la crescita individuale, la motivazione e la consapevolezza."},
	{34, "Visione Imprenditoriale", "Formazione orientata all'innovazione, leadership e creazione d'impresa."},
}

// SeedCourseCategories returns a fresh copy of the fixed category table.
func SeedCourseCategories() *Table {
	t := NewTable(TableCourseCategories, CourseCategoryColumns...)
	for _, s := range categorySeeds {
		t.AppendRow(Row{
			"id":                s.id,
			"name":              s.name,
			"idnumber":          nil,
			"description":       s.description,
			"descriptionformat": int64(0),
			"parent":            int64(0),
			"sortorder":         int64(0),
			"coursecount":       int64(0),
			"visible":           int64(1),
			"visibleold":        int64(1),
			"timemodified":      int64(0),
			"depth":             int64(0),
		})
	}
	return t
}

var roleSeeds = []string{
	"manager", "coursecreator", "editingteacher", "teacher", "student", "guest", "user", "frontpage",
}

// SeedRoles returns a fresh copy of the fixed role table, ids 1..8.
func SeedRoles() *Table {
	t := NewTable(TableRole, RoleColumns...)
	for i, short := range roleSeeds {
		id := int64(i + 1)
		t.AppendRow(Row{
			"id":          id,
			"name":        "",
			"shortname":   short,
			"description": "",
			"sortorder":   id,
			"archetype":   short,
		})
	}
	return t
}
