package rollcall

// ResultCode is the closed set of job outcomes. Positive means success,
// zero means the job has not finished, negatives name the failure.
type ResultCode int

const (
	Succeeded                         ResultCode = 1
	Unset                             ResultCode = 0
	UnableToInitializeWebDriver       ResultCode = -1
	UnableToLogIn                     ResultCode = -2
	NoLectureToRollCall               ResultCode = -3
	UnableToGetClassDate              ResultCode = -4
	UnableToGetMemberList             ResultCode = -5
	UnableToRollCall                  ResultCode = -6
	UnableToReadAttendanceReportSheet ResultCode = -7
)

// Result is the sole authoritative outcome of one job run. Data carries
// auxiliary context, e.g. the note of the sheet that failed to load.
type Result struct {
	Code ResultCode
	Data string
}

// Message is the user-facing description displayed for a code.
func (c ResultCode) Message() string {
	switch c {
	case Succeeded:
		return "匯入成功"
	case Unset:
		return "執行中"
	case UnableToInitializeWebDriver:
		return "無法啟動瀏覽器"
	case UnableToLogIn:
		return "無法登入"
	case NoLectureToRollCall:
		return "無上課時程表，不須點名"
	case UnableToGetClassDate:
		return "無法取得上課時間"
	case UnableToGetMemberList:
		return "無法取得福智學員平臺名單"
	case UnableToRollCall:
		return "無法匯入出席狀況"
	case UnableToReadAttendanceReportSheet:
		return "無法讀取出勤結果表"
	default:
		return "未知結果"
	}
}

func (c ResultCode) String() string {
	switch c {
	case Succeeded:
		return "succeeded"
	case Unset:
		return "unset"
	case UnableToInitializeWebDriver:
		return "unable_to_initialize_web_driver"
	case UnableToLogIn:
		return "unable_to_log_in"
	case NoLectureToRollCall:
		return "no_lecture_to_roll_call"
	case UnableToGetClassDate:
		return "unable_to_get_class_date"
	case UnableToGetMemberList:
		return "unable_to_get_member_list"
	case UnableToRollCall:
		return "unable_to_roll_call"
	case UnableToReadAttendanceReportSheet:
		return "unable_to_read_attendance_report_sheet"
	default:
		return "unknown"
	}
}
