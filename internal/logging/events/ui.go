package events

import "github.com/steamserverui/ssui-console/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) TabShow(tab string) {
	logging.Trace("tab.show", map[string]interface{}{"tab": tab})
}

func (UITracer) TabNotify(tab string) {
	logging.Trace("tab.notify", map[string]interface{}{"tab": tab})
}

func (UITracer) ViewChange(from, to string) {
	logging.Trace("view.change", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) ThemeChange(name string) {
	logging.Trace("theme.change", map[string]interface{}{"theme": name})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}

func (CommandTracer) NoOp(id, label string) {
	logging.Trace("command.noop", map[string]interface{}{"id": id, "label": label})
}

func (UITracer) ListEnter(list, item, label, filter string) {
	logging.Trace("list.enter", map[string]interface{}{"list": list, "item": item, "label": label, "filter": filter})
}

func (UITracer) ListCursor(list string, cursor int) {
	logging.Trace("list.cursor", map[string]interface{}{"list": list, "cursor": cursor})
}

func (FilterTracer) Edit(list, edit, filter string, cursor int) {
	logging.Trace("filter.edit", map[string]interface{}{"list": list, "edit": edit, "filter": filter, "cursor": cursor})
}
