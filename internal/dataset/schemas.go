package dataset

func zero() Generator  { return Constant(int64(0)) }
func one() Generator   { return Constant(int64(1)) }
func blank() Generator { return Constant("") }

var ContextSchema = Schema{
	{"path", Null()},
	{"depth", zero()},
	{"locked", zero()},
}

var CourseSchema = Schema{
	{"sortorder", zero()},
	{"idnumber", blank()},
	{"summaryformat", zero()},
	{"format", Choice("topics", "weeks", "site")},
	{"showgrades", one()},
	{"newsitems", one()},
	{"startdate", Fake(FakeTimestamp)},
	{"enddate", Fake(FakeTimestamp)},
	{"relativedatesmode", zero()},
	{"marker", zero()},
	{"maxbytes", zero()},
	{"legacyfiles", zero()},
	{"showreports", zero()},
	{"visible", one()},
	{"visibleold", one()},
	{"downloadcontent", Null()},
	{"groupmode", zero()},
	{"groupmodeforce", zero()},
	{"defaultgroupingid", zero()},
	{"lang", Constant("it")},
	{"calendartype", blank()},
	{"theme", blank()},
	{"timecreated", Fake(FakeTimestamp)},
	{"timemodified", Fake(FakeTimestamp)},
	{"requested", zero()},
	{"enablecompletion", zero()},
	{"completionnotify", zero()},
	{"cacherev", zero()},
	{"originalcourseid", Null()},
	{"showactivitydates", zero()},
	{"showcompletionconditions", one()},
	{"pdfexportfont", Null()},
}

var ResourceSchema = Schema{
	{"introformat", one()},
	{"tobemigrated", zero()},
	{"legacyfiles", zero()},
	{"legacyfileslast", Null()},
	{"display", zero()},
	{"displayoptions", Null()},
	{"filterfiles", zero()},
	{"revision", zero()},
	{"timemodified", Fake(FakeTimestamp)},
	{"feedback_score", FloatRange(1.0, 5.0, 1)},
}

var RoleAssignmentSchema = Schema{
	{"timemodified", Fake(FakeTimestamp)},
	{"modifierid", zero()},
	{"component", blank()},
	{"itemid", zero()},
	{"sortorder", zero()},
}

// UserSchema fills profile columns; identity columns come from FillCoherentUsers.
var UserSchema = Schema{
	{"auth", Choice("email", "manual", "oauth2")},
	{"confirmed", zero()},
	{"policyagreed", zero()},
	{"deleted", zero()},
	{"suspended", zero()},
	{"mnethostid", one()},
	{"password", Fake(FakePassword)},
	{"idnumber", blank()},
	{"emailstop", zero()},
	{"icq", blank()},
	{"skype", blank()},
	{"yahoo", blank()},
	{"aim", blank()},
	{"msn", blank()},
	{"phone1", Fake(FakePhone)},
	{"phone2", Fake(FakePhone)},
	{"institution", Fake(FakeInstitute)},
	{"department", Fake(FakeDepartment)},
	{"address", blank()},
	{"city", Fake(FakeCity)},
	{"country", Constant("IT")},
	{"lang", Constant("it")},
	{"calendartype", Constant("gregorian")},
	{"theme", blank()},
	{"timezone", Constant(int64(99))},
	{"firstaccess", Fake(FakeTimestamp)},
	{"lastaccess", Fake(FakeTimestamp)},
	{"lastlogin", Fake(FakeTimestamp)},
	{"currentlogin", Fake(FakeTimestamp)},
	{"lastip", Fake(FakeIP)},
	{"secret", blank()},
	{"picture", zero()},
	{"url", blank()},
	{"description", Null()},
	{"descriptionformat", one()},
	{"mailformat", one()},
	{"maildigest", zero()},
	{"maildisplay", Constant(int64(2))},
	{"autosubscribe", one()},
	{"trackforums", zero()},
	{"timecreated", Fake(FakeTimestamp)},
	{"timemodified", Fake(FakeTimestamp)},
	{"trustbitmask", zero()},
	{"imagealt", Null()},
	{"lastnamephonetic", Null()},
	{"firstnamephonetic", Null()},
	{"middlename", Null()},
	{"alternatename", Null()},
	{"moodlenetprofile", Null()},
}
