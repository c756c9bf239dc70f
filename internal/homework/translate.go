package homework

import "fmt"

const messageFormat = `Изменился статус проверки работы "%s". %s`

// Translate renders the chat message for one record.
func Translate(rec Record) (string, error) {
	rawName, ok := rec[FieldName]
	if !ok || rawName == nil {
		return "", &MissingNameError{}
	}
	name := fmt.Sprint(rawName)

	rawStatus, ok := rec[FieldStatus]
	if !ok || rawStatus == nil {
		return "", &MissingStatusError{Name: name}
	}
	status, ok := rawStatus.(string)
	if !ok {
		return "", &UnknownStatusError{Status: rawStatus}
	}
	verdict, ok := Verdict(status)
	if !ok {
		return "", &UnknownStatusError{Status: status}
	}
	return fmt.Sprintf(messageFormat, name, verdict), nil
}
