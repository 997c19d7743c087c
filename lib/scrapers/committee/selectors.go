package committee

import "fmt"

// the platform is a Quasar SPA with no stable ids, so every element is
// located by reverse-engineered XPath. keeping them all in one place means
// a markup change on the platform side touches one table.
const (
	loginPageURL    = "https://pw.blisswisdom.org/"
	rollCallPageURL = "https://pw.blisswisdom.org/#/School/RollCall"

	selAccountInput       = `//input[@placeholder="請輸入帳號"]`
	selPasswordInput      = `//input[@placeholder="請輸入密碼"]`
	selCaptchaInput       = `//input[@placeholder="請輸入圖片中之文字"]`
	selCaptchaImage       = `//img[contains(@src, ";base64,")]`
	selCaptchaWrongNotice = `//div[text()="驗證碼錯誤，請重新輸入!!"]`
	selLoginButton        = `//button[contains(span, "登入")]`
	selLogoutButton       = `//a[@class="logoutBtn"]`

	selClassNameDropdown = `//span[text()="班級名稱"]/../..//div[contains(@class, " q-if-focusable ")]`
	selRollCallButton    = `//button[contains(span, "點名")]`
	selNoLectureNotice   = `//*[contains(text(), "無上課時程表, 不須點名")]`
	selRowsPerPage       = `//span[contains(@class, " q-if-addon-visible") and text()="行/頁"]`
	selClassDate         = `//span[text()="上課日期："]/parent::div/following-sibling::div`

	selRosterTable     = `//table[@class="datatable-resultset table-striped"]`
	selCurrentPageSpan = `//a[@class="pagination__item pagination__item--active"]/span`
	selNextPageButton  = `//i[text()="chevron_right"]/parent::a[contains(@class, "pagination__navigation")]`
	selEnabledNextPage = `//i[text()="chevron_right"]/parent::a[@class="pagination__navigation"]`
	selDisabledNextPage = `//i[text()="chevron_right"]` +
		`/parent::a[@class="pagination__navigation pagination__navigation--disabled"]`
)

func selClassNameItem(className string) string {
	return fmt.Sprintf(`//div[text()=%q]`, className)
}

func selPageButton(page int) string {
	return fmt.Sprintf(`//span[text()="%d"]/parent::a[contains(@class, "pagination__item")]`, page)
}

func selCurrentPageButton(page int) string {
	return fmt.Sprintf(`//span[text()="%d"]/parent::a[@class="pagination__item pagination__item--active"]`, page)
}

func selNotCurrentPageButton(page int) string {
	return fmt.Sprintf(`//span[text()="%d"]/parent::a[@class="pagination__item"]`, page)
}

// selMemberStateRadio addresses the radio control for one member's state,
// keyed by name, group and the radio input value the platform uses for
// that state.
func selMemberStateRadio(m Member) string {
	return fmt.Sprintf(
		`//table[@class="datatable-resultset table-striped"]/tr/td[2]/div[text()=%q]`+
			`/parent::td/preceding-sibling::td/div[text()=%q]`+
			`/parent::td/parent::tr//td/div/div/div/div/div/div/input[@value=%q]`+
			`/parent::div/parent::div`,
		m.Name, m.GroupNumber, m.State.radioValue(),
	)
}

// selActiveMemberStateRadio matches only when that radio is already the
// active selection.
func selActiveMemberStateRadio(m Member) string {
	return fmt.Sprintf(
		`//table[@class="datatable-resultset table-striped"]/tr/td[2]/div[text()=%q]`+
			`/parent::td/preceding-sibling::td/div[text()=%q]`+
			`/parent::td/parent::tr//td/div/div/div/div/div/div[contains(@class, " active ")]`+
			`/input[@value=%q]/parent::div/parent::div`,
		m.Name, m.GroupNumber, m.State.radioValue(),
	)
}
