package vault

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppendDailyLog appends a one-line summary for a topic to today's daily
// log, creating the headed file on first write.
func (v *Vault) AppendDailyLog(topic, summary string) error {
	day := v.today()
	path := DailyPath(day)

	existing := ""
	data, err := v.store.Read(path)
	switch {
	case err == nil:
		existing = string(data)
	case errors.Is(err, os.ErrNotExist):
		existing = fmt.Sprintf("# Study Log — %s\n\n", day)
	default:
		return err
	}

	entry := fmt.Sprintf("- **%s**: %s\n", topic, summary)
	content := strings.TrimRight(existing, " \t\n") + "\n" + entry
	return v.store.Write(path, []byte(content))
}
