package models

type Counter struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location,omitempty"`
	DailyLimit    int    `json:"dailyLimit"`
	AssignedStaff *Staff `json:"assignedStaff,omitempty"`
	WaitingCount  int    `json:"waitingCount"`
}

type CreateCounterInput struct {
	Name       string `json:"name"`
	DailyLimit int    `json:"dailyLimit"`
}

type Staff struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// StaffName is what counter tables show in the staff column.
func (c Counter) StaffName() string {
	if c.AssignedStaff == nil || c.AssignedStaff.Username == "" {
		return "-"
	}
	return c.AssignedStaff.Username
}
