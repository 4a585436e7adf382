// Package status хранит соответствие «сервер → статус-сообщение» и
// отрисовывает embed'ы статуса, общие для планировщика и команды /check.
package status
