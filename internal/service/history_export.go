// internal/service/history_export.go
package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/unclebandit/salesmail-backend/internal/model"
)

var historyCSVHeader = []string{"送信日時", "件名", "総送信数", "成功数", "失敗数", "成功率"}

const historyTimeLayout = "2006/01/02 15:04"

// WriteHistoryCSV renders send histories as a CSV table, one row per send.
func WriteHistoryCSV(w io.Writer, histories []model.SendHistory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyCSVHeader); err != nil {
		return err
	}
	for _, h := range histories {
		row := []string{
			h.SentAt.Format(historyTimeLayout),
			h.Subject,
			strconv.Itoa(h.TotalRecipients),
			strconv.Itoa(h.SuccessCount),
			strconv.Itoa(h.FailedCount),
			fmt.Sprintf("%d%%", h.SuccessRate()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
