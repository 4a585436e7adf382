// Package scheduler - сверка списка серверов со статус-сообщениями в канале.
//
// Каждый тик:
//   - перечитывает конфиг и проверяет канал;
//   - на первом тике процесса чистит канал от старых сообщений;
//   - по очереди опрашивает серверы и для каждого правит его сообщение
//     (или создаёт новое, если прежнее пропало).
//
// Тики не пересекаются: Tick во время идущего тика сразу возвращает
// ErrTickInProgress. Удаления и серверы разнесены во времени Throttle'ами,
// чтобы не упираться в rate limit Discord.
package scheduler
